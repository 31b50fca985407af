package events

import (
	"context"
	"fmt"

	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
	"gorm.io/gorm"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an event logging service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) LogScoreCalculated(ctx context.Context, companyID string, payload ScoreCalculatedPayload) error {
	if companyID == "" {
		return fmt.Errorf("company id required for score_calculated event")
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	event := &models.Event{
		EventType: enums.EventScoreCalculated,
		CompanyID: &companyID,
		EventData: raw,
	}
	if _, err := s.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("append score_calculated event: %w", err)
	}
	return nil
}

func (s *service) LogActivationStep(ctx context.Context, userID string, payload ActivationStepPayload) error {
	if userID == "" {
		return fmt.Errorf("user id required for activation event")
	}
	if payload.Step == "" {
		return fmt.Errorf("activation step required")
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	event := &models.Event{
		EventType: enums.EventActivationStepCompleted,
		UserID:    &userID,
		EventData: raw,
	}
	if _, err := s.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("append activation event: %w", err)
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID), "activation step recorded")
	return nil
}

// LogEmailGenerated writes inside the caller's transaction when one is given,
// so the email row and its event commit or roll back together.
func (s *service) LogEmailGenerated(ctx context.Context, tx *gorm.DB, companyID string, payload EmailGeneratedPayload) error {
	if companyID == "" {
		return fmt.Errorf("company id required for email_generated event")
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	event := &models.Event{
		EventType: enums.EventEmailGenerated,
		CompanyID: &companyID,
		EventData: raw,
	}
	if _, err := s.repo.WithTx(tx).Append(ctx, event); err != nil {
		return fmt.Errorf("append email_generated event: %w", err)
	}
	return nil
}
