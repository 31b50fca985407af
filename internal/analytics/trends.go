package analytics

import (
	"context"
	"time"

	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/pkg/enums"
)

const dateLayout = "2006-01-02"

// FunnelOverTime returns one entry per calendar day in the window, in
// chronological order. Days without events still appear with zero counts.
func (s *service) FunnelOverTime(ctx context.Context, end time.Time, days int) ([]FunnelDay, error) {
	current, _ := kpiWindows(end, days)

	scored, err := s.scoredEvents(ctx, current)
	if err != nil {
		return nil, err
	}
	activationRows, err := s.repo.EventsByType(ctx, enums.EventActivationStepCompleted, current)
	if err != nil {
		return nil, err
	}

	qualifiedByDay := map[string]map[string]struct{}{}
	for _, entry := range scored {
		if entry.payload.Score <= QualifiedScoreThreshold {
			continue
		}
		day := dayStart(entry.timestamp).Format(dateLayout)
		if qualifiedByDay[day] == nil {
			qualifiedByDay[day] = map[string]struct{}{}
		}
		qualifiedByDay[day][entry.companyID] = struct{}{}
	}

	activatedByDay := map[string]map[string]struct{}{}
	for _, row := range activationRows {
		payload, err := events.DecodeActivationStep(row.EventData)
		if err != nil || row.UserID == nil || payload.Step != enums.StepResultViewed {
			continue
		}
		day := dayStart(row.Timestamp).Format(dateLayout)
		if activatedByDay[day] == nil {
			activatedByDay[day] = map[string]struct{}{}
		}
		activatedByDay[day][*row.UserID] = struct{}{}
	}

	series := make([]FunnelDay, 0, days)
	for day := current.Since; day.Before(current.Until); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		series = append(series, FunnelDay{
			Date:           key,
			QualifiedLeads: len(qualifiedByDay[key]),
			Activations:    len(activatedByDay[key]),
		})
	}
	return series, nil
}
