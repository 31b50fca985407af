package emails

import (
	"context"
	"time"

	"github.com/brimhq/growth-engine/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an outbound email repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, email *models.OutboundEmail) (*models.OutboundEmail, error) {
	if err := r.db.WithContext(ctx).Create(email).Error; err != nil {
		return nil, err
	}
	return email, nil
}

// ListUnsent returns the highest-score unsent rows, insertion order breaking
// score ties.
func (r *repository) ListUnsent(ctx context.Context, limit int) ([]models.OutboundEmail, error) {
	var rows []models.OutboundEmail
	err := r.db.WithContext(ctx).
		Where("is_sent = ?", false).
		Order("score DESC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSent flips the batch in one statement so a concurrent reader never sees
// a partially sent cycle.
func (r *repository) MarkSent(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.OutboundEmail{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"is_sent":         true,
			"send_attempts":   gorm.Expr("send_attempts + 1"),
			"last_attempt_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
