package emails

import (
	"context"
	"fmt"
	"time"

	"github.com/brimhq/growth-engine/pkg/logger"
	"gorm.io/gorm"
)

const defaultBatchSize = 5

type dispatcher struct {
	repo      Repository
	tx        txRunner
	logg      *logger.Logger
	batchSize int
	now       func() time.Time
}

// NewDispatcher builds the queue-draining side. batchSize <= 0 falls back to
// the default of 5.
func NewDispatcher(repo Repository, tx txRunner, logg *logger.Logger, batchSize int) (Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("emails repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &dispatcher{
		repo:      repo,
		tx:        tx,
		logg:      logg,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

// SendPrioritized runs one dispatch cycle: select up to batchSize unsent
// emails by score descending and flip them sent in a single transaction.
// Delivery itself is a status flip plus a log line. An empty queue is a
// no-op, not an error, and a row already flipped is never selected again.
func (d *dispatcher) SendPrioritized(ctx context.Context) (DispatchResult, error) {
	var sentIDs []int64
	var sentCompanies []string

	err := d.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := d.repo.WithTx(tx)
		batch, err := repo.ListUnsent(ctx, d.batchSize)
		if err != nil {
			return fmt.Errorf("select unsent emails: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(batch))
		companies := make([]string, 0, len(batch))
		for _, email := range batch {
			ids = append(ids, email.ID)
			companies = append(companies, email.CompanyID)
		}

		updated, err := repo.MarkSent(ctx, ids, d.now().UTC())
		if err != nil {
			return fmt.Errorf("mark emails sent: %w", err)
		}
		if updated != int64(len(ids)) {
			return fmt.Errorf("expected %d rows flipped, got %d", len(ids), updated)
		}

		sentIDs = ids
		sentCompanies = companies
		return nil
	})
	if err != nil {
		return DispatchResult{}, err
	}

	if len(sentIDs) == 0 {
		d.logg.Info(ctx, "dispatch cycle found empty queue")
		return DispatchResult{}, nil
	}
	for i, id := range sentIDs {
		d.logg.Info(d.logg.WithFields(ctx, map[string]any{
			"email_id":   id,
			"company_id": sentCompanies[i],
		}), "outbound email sent")
	}
	return DispatchResult{Sent: len(sentIDs)}, nil
}
