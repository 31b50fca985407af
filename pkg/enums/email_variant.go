package enums

import "fmt"

// EmailVariant names the outbound copy angle selected for a lead.
type EmailVariant string

const (
	EmailVariantProblemFocused EmailVariant = "problem_focused"
	EmailVariantROIFocused     EmailVariant = "roi_focused"
)

var validEmailVariants = []EmailVariant{
	EmailVariantProblemFocused,
	EmailVariantROIFocused,
}

// IsValid checks whether the given variant matches the canonical enum.
func (v EmailVariant) IsValid() bool {
	for _, candidate := range validEmailVariants {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseEmailVariant converts raw strings into EmailVariant.
func ParseEmailVariant(value string) (EmailVariant, error) {
	for _, candidate := range validEmailVariants {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email variant %q", value)
}
