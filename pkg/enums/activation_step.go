package enums

// ActivationStep names a step of the product activation funnel. The funnel
// order is fixed; analytics reports every step even when it has no events.
type ActivationStep string

const (
	StepFileUpload       ActivationStep = "file_upload"
	StepResultViewed     ActivationStep = "result_viewed"
	StepShareStepReached ActivationStep = "share_step_reached"
)

// FunnelSteps returns the configured funnel steps in display order.
func FunnelSteps() []ActivationStep {
	return []ActivationStep{StepFileUpload, StepResultViewed, StepShareStepReached}
}
