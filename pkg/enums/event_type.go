package enums

// EventType tags rows in the append-only events table. The set is open:
// new producers may introduce new types without a schema change, so there is
// deliberately no IsValid gate here.
type EventType string

const (
	EventScoreCalculated         EventType = "score_calculated"
	EventActivationStepCompleted EventType = "activation_step_completed"
	EventEmailGenerated          EventType = "email_generated"
)
