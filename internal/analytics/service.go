package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
)

const scoreBinCount = 10

// Service is the read-side aggregator over the event log and the outbound
// queue. Every operation is a pure read; none mutate state.
type Service interface {
	ScoreDistribution(ctx context.Context) ([]ScoreBin, error)
	TopLeads(ctx context.Context, limit int) ([]TopLead, error)
	ActivationFunnel(ctx context.Context) ([]FunnelStep, error)
	EmailPerformance(ctx context.Context) ([]VariantCount, error)
	LeadsTable(ctx context.Context) ([]LeadRow, error)

	QualifiedLeadsKPI(ctx context.Context, end time.Time, days int) (KPIResult, error)
	NewActivationsKPI(ctx context.Context, end time.Time, days int) (KPIResult, error)
	ConversionRateKPI(ctx context.Context, end time.Time, days int) (KPIResult, error)
	EngagementKPI(ctx context.Context, end time.Time, days int) (KPIResult, error)

	FunnelOverTime(ctx context.Context, end time.Time, days int) ([]FunnelDay, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	rng  *rand.Rand
}

// NewService builds the analytics service. rng drives the simulated
// engagement KPI; pass a seeded source for deterministic tests, nil for
// production randomness.
func NewService(repo Repository, logg *logger.Logger, rng *rand.Rand) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &service{repo: repo, logg: logg, rng: rng}, nil
}

// ScoreDistribution partitions every scored-company event into 10 fixed
// bins: 0-10, 11-20, ... 91-100.
func (s *service) ScoreDistribution(ctx context.Context) ([]ScoreBin, error) {
	scored, err := s.scoredEvents(ctx, Window{})
	if err != nil {
		return nil, err
	}

	bins := make([]ScoreBin, scoreBinCount)
	for i := range bins {
		if i == 0 {
			bins[i].Label = "0-10"
			continue
		}
		bins[i].Label = fmt.Sprintf("%d-%d", i*10+1, (i+1)*10)
	}
	for _, entry := range scored {
		bins[binIndex(entry.payload.Score)].Count++
	}
	return bins, nil
}

func binIndex(score int) int {
	if score <= 10 {
		return 0
	}
	if score > 100 {
		return scoreBinCount - 1
	}
	return (score - 1) / 10
}

// TopLeads keeps only each company's most recent score (highest event id),
// then ranks by score descending.
func (s *service) TopLeads(ctx context.Context, limit int) ([]TopLead, error) {
	if limit <= 0 {
		limit = 10
	}
	latest, err := s.latestScores(ctx, Window{})
	if err != nil {
		return nil, err
	}

	leads := make([]TopLead, 0, len(latest))
	for companyID, entry := range latest {
		leads = append(leads, TopLead{
			CompanyID:   companyID,
			CompanyName: entry.payload.CompanyName,
			Score:       entry.payload.Score,
		})
	}
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].Score != leads[j].Score {
			return leads[i].Score > leads[j].Score
		}
		return leads[i].CompanyID < leads[j].CompanyID
	})
	if len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}

// ActivationFunnel counts distinct users per configured step. Steps with no
// events still appear with count 0, in the fixed funnel order.
func (s *service) ActivationFunnel(ctx context.Context) ([]FunnelStep, error) {
	rows, err := s.repo.EventsByType(ctx, enums.EventActivationStepCompleted, Window{})
	if err != nil {
		return nil, err
	}

	usersByStep := map[enums.ActivationStep]map[string]struct{}{}
	for _, row := range rows {
		payload, err := events.DecodeActivationStep(row.EventData)
		if err != nil || row.UserID == nil {
			continue
		}
		if usersByStep[payload.Step] == nil {
			usersByStep[payload.Step] = map[string]struct{}{}
		}
		usersByStep[payload.Step][*row.UserID] = struct{}{}
	}

	funnel := make([]FunnelStep, 0, len(enums.FunnelSteps()))
	for _, step := range enums.FunnelSteps() {
		funnel = append(funnel, FunnelStep{StepName: step, UserCount: len(usersByStep[step])})
	}
	return funnel, nil
}

func (s *service) EmailPerformance(ctx context.Context) ([]VariantCount, error) {
	return s.repo.VariantCounts(ctx)
}

// LeadsTable joins each company's latest score with its outreach status:
// Sent when any sent email exists for the company, Pending otherwise.
func (s *service) LeadsTable(ctx context.Context) ([]LeadRow, error) {
	latest, err := s.latestScores(ctx, Window{})
	if err != nil {
		return nil, err
	}
	sent, err := s.repo.SentEmails(ctx, Window{})
	if err != nil {
		return nil, err
	}

	variantByCompany := map[string]enums.EmailVariant{}
	for _, email := range sent {
		variantByCompany[email.CompanyID] = email.VariantName
	}

	table := make([]LeadRow, 0, len(latest))
	for companyID, entry := range latest {
		row := LeadRow{
			CompanyID:   companyID,
			CompanyName: entry.payload.CompanyName,
			Score:       entry.payload.Score,
			Status:      LeadStatusPending,
		}
		if variant, ok := variantByCompany[companyID]; ok {
			row.Status = LeadStatusSent
			row.EmailVariantSent = string(variant)
		}
		table = append(table, row)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Score > table[j].Score })
	return table, nil
}

type scoredEvent struct {
	eventID   int64
	companyID string
	timestamp time.Time
	payload   events.ScoreCalculatedPayload
}

func (s *service) scoredEvents(ctx context.Context, window Window) ([]scoredEvent, error) {
	rows, err := s.repo.EventsByType(ctx, enums.EventScoreCalculated, window)
	if err != nil {
		return nil, err
	}

	out := make([]scoredEvent, 0, len(rows))
	for _, row := range rows {
		if row.CompanyID == nil {
			continue
		}
		payload, err := events.DecodeScoreCalculated(row.EventData)
		if err != nil {
			s.logg.Warn(ctx, "skipping undecodable score event: "+err.Error())
			continue
		}
		out = append(out, scoredEvent{
			eventID:   row.ID,
			companyID: *row.CompanyID,
			timestamp: row.Timestamp,
			payload:   payload,
		})
	}
	return out, nil
}

func (s *service) latestScores(ctx context.Context, window Window) (map[string]scoredEvent, error) {
	scored, err := s.scoredEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	latest := map[string]scoredEvent{}
	for _, entry := range scored {
		if existing, ok := latest[entry.companyID]; ok && existing.eventID > entry.eventID {
			continue
		}
		latest[entry.companyID] = entry
	}
	return latest, nil
}
