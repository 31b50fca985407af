package events

import (
	"encoding/json"
	"fmt"

	"github.com/brimhq/growth-engine/pkg/enums"
)

// ScoreCalculatedPayload is the event_data shape for score_calculated rows.
type ScoreCalculatedPayload struct {
	ModelUsed   enums.ScoringModel `json:"model_used"`
	Score       int                `json:"score"`
	CompanyName string             `json:"company_name"`
}

// ActivationStepPayload is the event_data shape for activation_step_completed
// rows. Metadata is caller-defined and passed through untouched.
type ActivationStepPayload struct {
	Step     enums.ActivationStep `json:"step"`
	Metadata map[string]any       `json:"metadata,omitempty"`
}

// EmailGeneratedPayload is the event_data shape for email_generated rows.
type EmailGeneratedPayload struct {
	EmailID     int64              `json:"email_id"`
	VariantName enums.EmailVariant `json:"variant_name"`
	Score       int                `json:"score"`
}

func marshalPayload(payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return raw, nil
}

// DecodeScoreCalculated parses event_data written by LogScoreCalculated.
func DecodeScoreCalculated(raw json.RawMessage) (ScoreCalculatedPayload, error) {
	var payload ScoreCalculatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ScoreCalculatedPayload{}, fmt.Errorf("decode score_calculated payload: %w", err)
	}
	return payload, nil
}

// DecodeActivationStep parses event_data written by LogActivationStep.
func DecodeActivationStep(raw json.RawMessage) (ActivationStepPayload, error) {
	var payload ActivationStepPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ActivationStepPayload{}, fmt.Errorf("decode activation_step payload: %w", err)
	}
	return payload, nil
}

// DecodeEmailGenerated parses event_data written by LogEmailGenerated.
func DecodeEmailGenerated(raw json.RawMessage) (EmailGeneratedPayload, error) {
	var payload EmailGeneratedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return EmailGeneratedPayload{}, fmt.Errorf("decode email_generated payload: %w", err)
	}
	return payload, nil
}
