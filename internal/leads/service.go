package leads

import (
	"context"
	"fmt"
	"sync"

	"github.com/brimhq/growth-engine/internal/emails"
	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/internal/scoring"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
	"go.uber.org/multierr"
)

// ActivationInput is one funnel-step completion reported by the product.
type ActivationInput struct {
	UserID   string         `json:"user_id" validate:"required"`
	StepName string         `json:"step_name" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// BatchAck acknowledges a batch scoring request before processing begins.
type BatchAck struct {
	Accepted int `json:"accepted"`
}

// Service is the write-side entrypoint: scoring, activation logging, and
// batch scoring.
type Service interface {
	Score(ctx context.Context, company scoring.CompanyInput, model enums.ScoringModel) (scoring.ScoringOutput, error)
	BatchScore(ctx context.Context, companies []scoring.CompanyInput, model enums.ScoringModel) (BatchAck, error)
	LogActivation(ctx context.Context, input ActivationInput) error
}

type service struct {
	events    events.Service
	generator emails.Enqueuer
	logg      *logger.Logger
}

// NewService builds the lead service.
func NewService(eventsSvc events.Service, generator emails.Enqueuer, logg *logger.Logger) (Service, error) {
	if eventsSvc == nil {
		return nil, fmt.Errorf("events service required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generation enqueuer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{events: eventsSvc, generator: generator, logg: logg}, nil
}

// Score computes the lead score, records the score_calculated event, and
// hands content generation to the background pool. The caller gets the score
// back as soon as the event is committed; generation success or failure never
// affects the response.
func (s *service) Score(ctx context.Context, company scoring.CompanyInput, model enums.ScoringModel) (scoring.ScoringOutput, error) {
	result, err := scoring.Calculate(company, model)
	if err != nil {
		return scoring.ScoringOutput{}, err
	}

	err = s.events.LogScoreCalculated(ctx, result.CompanyID, events.ScoreCalculatedPayload{
		ModelUsed:   model,
		Score:       result.TotalScore,
		CompanyName: company.CompanyName,
	})
	if err != nil {
		return scoring.ScoringOutput{}, err
	}

	s.generator.Enqueue(company, result)
	return result, nil
}

// BatchScore acknowledges immediately and processes every company in the
// background. One company's failure never aborts the others.
func (s *service) BatchScore(ctx context.Context, companies []scoring.CompanyInput, model enums.ScoringModel) (BatchAck, error) {
	if len(companies) == 0 {
		return BatchAck{}, fmt.Errorf("batch must contain at least one company")
	}

	background := context.WithoutCancel(ctx)
	go s.processBatch(background, companies, model)

	return BatchAck{Accepted: len(companies)}, nil
}

func (s *service) processBatch(ctx context.Context, companies []scoring.CompanyInput, model enums.ScoringModel) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		combined error
	)
	for _, company := range companies {
		wg.Add(1)
		go func(company scoring.CompanyInput) {
			defer wg.Done()
			if _, err := s.Score(ctx, company, model); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "company_name", company.CompanyName), "skipping company in batch: "+err.Error())
				mu.Lock()
				combined = multierr.Append(combined, fmt.Errorf("%s: %w", company.CompanyName, err))
				mu.Unlock()
			}
		}(company)
	}
	wg.Wait()

	if combined != nil {
		s.logg.Error(ctx, "batch scoring finished with failures", combined)
		return
	}
	s.logg.Info(ctx, "batch scoring finished")
}

// LogActivation appends one activation_step_completed event.
func (s *service) LogActivation(ctx context.Context, input ActivationInput) error {
	if input.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if input.StepName == "" {
		return fmt.Errorf("step_name is required")
	}
	return s.events.LogActivationStep(ctx, input.UserID, events.ActivationStepPayload{
		Step:     enums.ActivationStep(input.StepName),
		Metadata: input.Metadata,
	})
}
