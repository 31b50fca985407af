package analytics

import (
	"time"

	"github.com/brimhq/growth-engine/pkg/enums"
)

// Window bounds a query by event time. Zero values mean unbounded; Until is
// exclusive.
type Window struct {
	Since time.Time
	Until time.Time
}

// ScoreBin is one fixed-width bucket of the score distribution.
type ScoreBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopLead is one row of the score leaderboard, built from each company's
// most recent score only.
type TopLead struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Score       int    `json:"score"`
}

// FunnelStep reports distinct users who completed one activation step.
type FunnelStep struct {
	StepName  enums.ActivationStep `json:"step_name"`
	UserCount int                  `json:"user_count"`
}

// VariantCount is generated email volume for one variant.
type VariantCount struct {
	VariantName enums.EmailVariant `json:"variant_name"`
	Count       int64              `json:"count"`
}

// KPIResult is the common shape for windowed KPI responses.
type KPIResult struct {
	MetricName       string  `json:"metric_name"`
	CurrentValue     float64 `json:"current_value"`
	PercentageChange float64 `json:"percentage_change"`
	Description      string  `json:"description"`
}

// FunnelDay is one calendar day of the funnel-over-time series.
type FunnelDay struct {
	Date           string `json:"date"`
	QualifiedLeads int    `json:"qualified_leads"`
	Activations    int    `json:"activations"`
}

// LeadRow is one row of the scored-leads table: latest score per company plus
// outreach status.
type LeadRow struct {
	CompanyID        string `json:"company_id"`
	CompanyName      string `json:"company_name"`
	Score            int    `json:"score"`
	Status           string `json:"status"`
	EmailVariantSent string `json:"email_variant_sent,omitempty"`
}

// LeadStatus values for LeadRow.Status.
const (
	LeadStatusSent    = "Sent"
	LeadStatusPending = "Pending"
)

// QualifiedScoreThreshold is the fixed cutoff above which a lead counts as
// qualified.
const QualifiedScoreThreshold = 75
