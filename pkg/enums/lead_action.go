package enums

// LeadAction is the recommended follow-up derived from a total score.
type LeadAction string

const (
	ActionHighPriorityOutreach   LeadAction = "high_priority_outreach"
	ActionMediumPriorityOutreach LeadAction = "medium_priority_outreach"
	ActionLowPriorityMonitoring  LeadAction = "low_priority_monitoring"
)
