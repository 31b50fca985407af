package analytics

import (
	"context"
	"math"
	"time"

	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/pkg/enums"
)

// DefaultKPIDays is the window length used when a caller omits days.
const DefaultKPIDays = 30

// kpiWindows derives the current window and the immediately preceding window
// of identical length. Both are half-open over day boundaries; end is the
// last included calendar day.
func kpiWindows(end time.Time, days int) (current, previous Window) {
	if days < 1 {
		days = DefaultKPIDays
	}
	endDay := dayStart(end)
	curStart := endDay.AddDate(0, 0, -(days - 1))
	current = Window{Since: curStart, Until: endDay.AddDate(0, 0, 1)}
	previous = Window{Since: curStart.AddDate(0, 0, -days), Until: curStart}
	return current, previous
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// percentageChange follows fixed conventions at the zero boundaries: a rise
// from nothing is 100%, flat nothing is 0%.
func percentageChange(current, previous float64) float64 {
	if previous > 0 {
		return round2((current - previous) / previous * 100)
	}
	if current > 0 {
		return 100.0
	}
	return 0.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// QualifiedLeadsKPI counts distinct companies scored above the qualification
// threshold in the window, compared period over period.
func (s *service) QualifiedLeadsKPI(ctx context.Context, end time.Time, days int) (KPIResult, error) {
	current, previous := kpiWindows(end, days)

	curCount, err := s.qualifiedCompanyCount(ctx, current)
	if err != nil {
		return KPIResult{}, err
	}
	prevCount, err := s.qualifiedCompanyCount(ctx, previous)
	if err != nil {
		return KPIResult{}, err
	}

	return KPIResult{
		MetricName:       "qualified_leads",
		CurrentValue:     float64(curCount),
		PercentageChange: percentageChange(float64(curCount), float64(prevCount)),
		Description:      "Distinct companies scored above the qualification threshold",
	}, nil
}

func (s *service) qualifiedCompanyCount(ctx context.Context, window Window) (int, error) {
	scored, err := s.scoredEvents(ctx, window)
	if err != nil {
		return 0, err
	}
	companies := map[string]struct{}{}
	for _, entry := range scored {
		if entry.payload.Score > QualifiedScoreThreshold {
			companies[entry.companyID] = struct{}{}
		}
	}
	return len(companies), nil
}

// NewActivationsKPI counts distinct users who reached the result_viewed step
// in the window.
func (s *service) NewActivationsKPI(ctx context.Context, end time.Time, days int) (KPIResult, error) {
	current, previous := kpiWindows(end, days)

	curCount, err := s.activatedUserCount(ctx, current)
	if err != nil {
		return KPIResult{}, err
	}
	prevCount, err := s.activatedUserCount(ctx, previous)
	if err != nil {
		return KPIResult{}, err
	}

	return KPIResult{
		MetricName:       "new_activations",
		CurrentValue:     float64(curCount),
		PercentageChange: percentageChange(float64(curCount), float64(prevCount)),
		Description:      "Distinct users who viewed results",
	}, nil
}

func (s *service) activatedUserCount(ctx context.Context, window Window) (int, error) {
	users, err := s.stepUsers(ctx, window, enums.StepResultViewed)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (s *service) stepUsers(ctx context.Context, window Window, step enums.ActivationStep) (map[string]struct{}, error) {
	rows, err := s.repo.EventsByType(ctx, enums.EventActivationStepCompleted, window)
	if err != nil {
		return nil, err
	}
	users := map[string]struct{}{}
	for _, row := range rows {
		payload, err := events.DecodeActivationStep(row.EventData)
		if err != nil || row.UserID == nil {
			continue
		}
		if payload.Step == step {
			users[*row.UserID] = struct{}{}
		}
	}
	return users, nil
}

// ConversionRateKPI is the share of uploading users who went on to view
// results, in percent.
func (s *service) ConversionRateKPI(ctx context.Context, end time.Time, days int) (KPIResult, error) {
	current, previous := kpiWindows(end, days)

	curRate, err := s.conversionRate(ctx, current)
	if err != nil {
		return KPIResult{}, err
	}
	prevRate, err := s.conversionRate(ctx, previous)
	if err != nil {
		return KPIResult{}, err
	}

	return KPIResult{
		MetricName:       "funnel_conversion_rate",
		CurrentValue:     curRate,
		PercentageChange: percentageChange(curRate, prevRate),
		Description:      "Users who viewed results as a share of users who uploaded a file",
	}, nil
}

func (s *service) conversionRate(ctx context.Context, window Window) (float64, error) {
	uploaded, err := s.stepUsers(ctx, window, enums.StepFileUpload)
	if err != nil {
		return 0, err
	}
	if len(uploaded) == 0 {
		return 0, nil
	}
	viewed, err := s.stepUsers(ctx, window, enums.StepResultViewed)
	if err != nil {
		return 0, err
	}
	return round2(float64(len(viewed)) / float64(len(uploaded)) * 100), nil
}
