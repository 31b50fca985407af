package events

import (
	"context"
	"time"

	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"gorm.io/gorm"
)

// Filter narrows event reads. Zero values mean "no constraint". Since and
// Until bound the event timestamp as a half-open interval [Since, Until).
type Filter struct {
	EventType enums.EventType
	CompanyID string
	UserID    string
	Since     time.Time
	Until     time.Time
}

// Repository is the append-only event store. There are no update or delete
// operations on purpose.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, event *models.Event) (*models.Event, error)
	List(ctx context.Context, filter Filter) ([]models.Event, error)
}

// Service writes typed events to the log. Each method owns the payload shape
// for one event type.
type Service interface {
	LogScoreCalculated(ctx context.Context, companyID string, payload ScoreCalculatedPayload) error
	LogActivationStep(ctx context.Context, userID string, payload ActivationStepPayload) error
	LogEmailGenerated(ctx context.Context, tx *gorm.DB, companyID string, payload EmailGeneratedPayload) error
}
