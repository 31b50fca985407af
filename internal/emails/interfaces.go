package emails

import (
	"context"
	"time"

	"github.com/brimhq/growth-engine/internal/scoring"
	"github.com/brimhq/growth-engine/pkg/db/models"
	"gorm.io/gorm"
)

// Repository covers the generation and dispatch sides of the outbound queue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, email *models.OutboundEmail) (*models.OutboundEmail, error)
	ListUnsent(ctx context.Context, limit int) ([]models.OutboundEmail, error)
	MarkSent(ctx context.Context, ids []int64, at time.Time) (int64, error)
}

// Generator produces one outbound email for a scored lead. Failures are
// logged and swallowed by callers; the triggering request never waits on it.
type Generator interface {
	Generate(ctx context.Context, company scoring.CompanyInput, result scoring.ScoringOutput) (*models.OutboundEmail, error)
}

// Dispatcher drains the queue one bounded batch at a time.
type Dispatcher interface {
	SendPrioritized(ctx context.Context) (DispatchResult, error)
}

// DispatchResult reports what one cycle did.
type DispatchResult struct {
	Sent int
}

// Enqueuer accepts generation work without blocking the caller.
type Enqueuer interface {
	Enqueue(company scoring.CompanyInput, result scoring.ScoringOutput) bool
}
