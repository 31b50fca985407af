package enums

import "fmt"

// ScoringModel selects the scoring strategy for a lead.
type ScoringModel string

const (
	ScoringModelConservative ScoringModel = "conservative"
	ScoringModelAggressive   ScoringModel = "aggressive"
	ScoringModelBalanced     ScoringModel = "balanced"
)

var validScoringModels = []ScoringModel{
	ScoringModelConservative,
	ScoringModelAggressive,
	ScoringModelBalanced,
}

// IsValid checks whether the given model matches the canonical enum.
func (m ScoringModel) IsValid() bool {
	for _, candidate := range validScoringModels {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseScoringModel converts raw strings into ScoringModel. Empty input
// resolves to the balanced default.
func ParseScoringModel(value string) (ScoringModel, error) {
	if value == "" {
		return ScoringModelBalanced, nil
	}
	for _, candidate := range validScoringModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scoring model %q", value)
}
