package analytics

import (
	"context"

	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"gorm.io/gorm"
)

// Repository is the read side over the event log and the outbound queue.
// Aggregation happens in the service layer; the repository only filters.
type Repository interface {
	EventsByType(ctx context.Context, eventType enums.EventType, window Window) ([]models.Event, error)
	VariantCounts(ctx context.Context) ([]VariantCount, error)
	SentEmails(ctx context.Context, window Window) ([]models.OutboundEmail, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) EventsByType(ctx context.Context, eventType enums.EventType, window Window) ([]models.Event, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("event_type = ?", eventType)
	if !window.Since.IsZero() {
		query = query.Where("timestamp >= ?", window.Since)
	}
	if !window.Until.IsZero() {
		query = query.Where("timestamp < ?", window.Until)
	}

	var rows []models.Event
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) VariantCounts(ctx context.Context) ([]VariantCount, error) {
	var rows []VariantCount
	err := r.db.WithContext(ctx).
		Model(&models.OutboundEmail{}).
		Select("variant_name, COUNT(*) AS count").
		Group("variant_name").
		Order("variant_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SentEmails filters on last_attempt_at, the moment the dispatch cycle
// flipped the row.
func (r *repository) SentEmails(ctx context.Context, window Window) ([]models.OutboundEmail, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OutboundEmail{}).
		Where("is_sent = ?", true)
	if !window.Since.IsZero() {
		query = query.Where("last_attempt_at >= ?", window.Since)
	}
	if !window.Until.IsZero() {
		query = query.Where("last_attempt_at < ?", window.Until)
	}

	var rows []models.OutboundEmail
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
