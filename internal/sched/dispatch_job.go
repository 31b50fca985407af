package sched

import (
	"context"
	"fmt"

	"github.com/brimhq/growth-engine/internal/emails"
	"github.com/brimhq/growth-engine/pkg/logger"
)

// EmailDispatchJobParams configure the email dispatch job.
type EmailDispatchJobParams struct {
	Dispatcher emails.Dispatcher
	Logger     *logger.Logger
}

// EmailDispatchJob drains one batch of the outbound queue per cycle.
type EmailDispatchJob struct {
	dispatcher emails.Dispatcher
	logg       *logger.Logger
}

// NewEmailDispatchJob builds the dispatch job.
func NewEmailDispatchJob(params EmailDispatchJobParams) (*EmailDispatchJob, error) {
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &EmailDispatchJob{dispatcher: params.Dispatcher, logg: params.Logger}, nil
}

// Name identifies the job in logs and metrics.
func (j *EmailDispatchJob) Name() string { return "email_dispatch" }

// Run executes one dispatch cycle.
func (j *EmailDispatchJob) Run(ctx context.Context) error {
	result, err := j.dispatcher.SendPrioritized(ctx)
	if err != nil {
		return fmt.Errorf("dispatch cycle: %w", err)
	}
	if result.Sent > 0 {
		j.logg.Info(j.logg.WithField(ctx, "sent", result.Sent), "dispatch cycle sent emails")
	}
	return nil
}
