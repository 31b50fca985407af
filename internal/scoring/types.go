package scoring

import "github.com/brimhq/growth-engine/pkg/enums"

// CompanyInput describes an inbound lead. Only the company name is required;
// every other field has a defined missing path.
type CompanyInput struct {
	CompanyName    string   `json:"company_name" validate:"required"`
	EmployeeCount  *int     `json:"employee_count,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	FundingStage   string   `json:"funding_stage,omitempty"`
	TechStack      []string `json:"tech_stack,omitempty"`
	RecentJobPosts []string `json:"recent_job_posts,omitempty"`
	NewsMentions   []string `json:"news_mentions,omitempty"`
}

// inputFieldCount is the denominator for the confidence calculation: the
// number of fields on CompanyInput.
const inputFieldCount = 7

// Reasoning explains a score as three labeled lists.
type Reasoning struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Missing  []string `json:"missing"`
}

// ScoringOutput is the result of scoring one company. CompanyID is derived
// deterministically from the company name so repeated scoring calls correlate
// in the event log without an identity table.
type ScoringOutput struct {
	CompanyID   string           `json:"company_id"`
	FitScore    int              `json:"fit_score"`
	IntentScore int              `json:"intent_score"`
	TotalScore  int              `json:"total_score"`
	Confidence  float64          `json:"confidence"`
	Reasoning   Reasoning        `json:"reasoning"`
	Action      enums.LeadAction `json:"action"`
}
