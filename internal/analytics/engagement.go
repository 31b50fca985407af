package analytics

import (
	"context"
	"time"

	"github.com/brimhq/growth-engine/pkg/enums"
)

const (
	clickProbabilityDivisor = 150.0
	roiVariantMultiplier    = 1.2
)

// EngagementKPI simulates click-through for emails sent in the window. Each
// sent email clicks with probability score/150, multiplied by 1.2 for the
// roi_focused variant. CTR is clicks over sent emails in percent, 0 when
// nothing was sent. Re-running yields different exact counts unless the
// service was built with a seeded random source.
func (s *service) EngagementKPI(ctx context.Context, end time.Time, days int) (KPIResult, error) {
	current, previous := kpiWindows(end, days)

	curRate, err := s.simulatedCTR(ctx, current)
	if err != nil {
		return KPIResult{}, err
	}
	prevRate, err := s.simulatedCTR(ctx, previous)
	if err != nil {
		return KPIResult{}, err
	}

	return KPIResult{
		MetricName:       "email_engagement",
		CurrentValue:     curRate,
		PercentageChange: percentageChange(curRate, prevRate),
		Description:      "Simulated click-through rate for sent outreach emails",
	}, nil
}

func (s *service) simulatedCTR(ctx context.Context, window Window) (float64, error) {
	sent, err := s.repo.SentEmails(ctx, window)
	if err != nil {
		return 0, err
	}
	if len(sent) == 0 {
		return 0, nil
	}

	clicks := 0
	for _, email := range sent {
		probability := float64(email.Score) / clickProbabilityDivisor
		if email.VariantName == enums.EmailVariantROIFocused {
			probability *= roiVariantMultiplier
		}
		if s.rng.Float64() < probability {
			clicks++
		}
	}
	return round2(float64(clicks) / float64(len(sent)) * 100), nil
}
