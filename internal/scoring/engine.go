package scoring

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/brimhq/growth-engine/pkg/enums"
)

// Fit signal constants. The ideal band mirrors the target customer profile
// (30-300 employees); the adjacent band still gets partial credit.
const (
	idealEmployeeMin = 30
	idealEmployeeMax = 300

	adjacentEmployeeMin = 10
	adjacentEmployeeMax = 1000

	companyIDLength = 15
)

// Action thresholds are fixed, not model-dependent.
const (
	highPriorityThreshold   = 80
	mediumPriorityThreshold = 60
)

var idealIndustries = []string{"SaaS", "Fintech", "Technology"}

var goodIndustries = []string{"E-commerce", "Healthcare", "Logistics"}

var automationTools = []string{"Zapier", "Salesforce", "HubSpot", "Make", "Airtable"}

var operationsHiringKeywords = []string{"operations", "automation", "revops"}

// calculator is the per-model strategy hook. Every model currently resolves
// to the same balanced weight table; wiring distinct tables per model is the
// intended extension point and does not change the public contract.
type calculator struct {
	fitWeight    float64
	intentWeight float64
}

var balancedCalculator = calculator{fitWeight: 0.6, intentWeight: 0.4}

func calculatorFor(model enums.ScoringModel) calculator {
	switch model {
	case enums.ScoringModelConservative, enums.ScoringModelAggressive, enums.ScoringModelBalanced:
		return balancedCalculator
	default:
		return balancedCalculator
	}
}

// Calculate scores a company against the ideal customer profile. It is pure:
// identical input and model always produce identical output, and no optional
// field ever causes a failure.
func Calculate(company CompanyInput, model enums.ScoringModel) (ScoringOutput, error) {
	if strings.TrimSpace(company.CompanyName) == "" {
		return ScoringOutput{}, fmt.Errorf("company name is required")
	}

	calc := calculatorFor(model)
	reasoning := Reasoning{Positive: []string{}, Negative: []string{}, Missing: []string{}}

	fitSignals := collectFitSignals(company, &reasoning)
	intentSignals := collectIntentSignals(company, &reasoning)

	fitScore := meanScore(fitSignals)
	intentScore := meanScore(intentSignals)
	totalScore := int(math.Round(calc.fitWeight*float64(fitScore) + calc.intentWeight*float64(intentScore)))

	return ScoringOutput{
		CompanyID:   CompanyID(company.CompanyName),
		FitScore:    fitScore,
		IntentScore: intentScore,
		TotalScore:  totalScore,
		Confidence:  confidence(company),
		Reasoning:   reasoning,
		Action:      actionFor(totalScore),
	}, nil
}

// CompanyID derives the stable lead identifier: the first 15 hex characters
// of the SHA-1 digest of the company name.
func CompanyID(companyName string) string {
	digest := sha1.Sum([]byte(companyName))
	return hex.EncodeToString(digest[:])[:companyIDLength]
}

func collectFitSignals(company CompanyInput, reasoning *Reasoning) []int {
	signals := []int{}

	if company.EmployeeCount == nil {
		reasoning.Missing = append(reasoning.Missing, "employee_count")
	} else {
		count := *company.EmployeeCount
		switch {
		case count >= idealEmployeeMin && count <= idealEmployeeMax:
			signals = append(signals, 100)
			reasoning.Positive = append(reasoning.Positive,
				fmt.Sprintf("Company size (%d employees) is in the ideal 30-300 range", count))
		case count >= adjacentEmployeeMin && count <= adjacentEmployeeMax:
			signals = append(signals, 50)
		default:
			signals = append(signals, 0)
			reasoning.Negative = append(reasoning.Negative,
				fmt.Sprintf("Company size (%d employees) is far outside the target profile", count))
		}
	}

	if company.Industry == "" {
		reasoning.Missing = append(reasoning.Missing, "industry")
	} else {
		switch {
		case containsFold(idealIndustries, company.Industry):
			signals = append(signals, 100)
			reasoning.Positive = append(reasoning.Positive,
				fmt.Sprintf("Industry %q is an ideal fit", company.Industry))
		case containsFold(goodIndustries, company.Industry):
			signals = append(signals, 60)
			reasoning.Positive = append(reasoning.Positive,
				fmt.Sprintf("Industry %q is a reasonable fit", company.Industry))
		default:
			reasoning.Negative = append(reasoning.Negative,
				fmt.Sprintf("Industry %q is outside the target profile", company.Industry))
		}
	}

	if company.FundingStage == "" {
		reasoning.Missing = append(reasoning.Missing, "funding_stage")
	}
	if len(company.NewsMentions) == 0 {
		reasoning.Missing = append(reasoning.Missing, "news_mentions")
	}

	return signals
}

func collectIntentSignals(company CompanyInput, reasoning *Reasoning) []int {
	signals := []int{}

	if len(company.TechStack) == 0 {
		reasoning.Missing = append(reasoning.Missing, "tech_stack")
	} else if tool, ok := firstAutomationTool(company.TechStack); ok {
		signals = append(signals, 100)
		reasoning.Positive = append(reasoning.Positive,
			fmt.Sprintf("Automation tooling (%s) present in tech stack", tool))
	} else {
		signals = append(signals, 20)
		reasoning.Negative = append(reasoning.Negative, "No automation tooling in tech stack")
	}

	if len(company.RecentJobPosts) == 0 {
		reasoning.Missing = append(reasoning.Missing, "recent_job_posts")
	} else if post, ok := firstOperationsPost(company.RecentJobPosts); ok {
		signals = append(signals, 100)
		reasoning.Positive = append(reasoning.Positive,
			fmt.Sprintf("Hiring for operations/automation roles (%q)", post))
	}

	return signals
}

func meanScore(signals []int) int {
	if len(signals) == 0 {
		return 0
	}
	sum := 0
	for _, s := range signals {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(signals))))
}

func confidence(company CompanyInput) float64 {
	provided := 1 // company_name is always present once Calculate is reached
	if company.EmployeeCount != nil {
		provided++
	}
	if company.Industry != "" {
		provided++
	}
	if company.FundingStage != "" {
		provided++
	}
	if len(company.TechStack) > 0 {
		provided++
	}
	if len(company.RecentJobPosts) > 0 {
		provided++
	}
	if len(company.NewsMentions) > 0 {
		provided++
	}
	return math.Round(float64(provided)/float64(inputFieldCount)*100) / 100
}

func actionFor(totalScore int) enums.LeadAction {
	switch {
	case totalScore > highPriorityThreshold:
		return enums.ActionHighPriorityOutreach
	case totalScore > mediumPriorityThreshold:
		return enums.ActionMediumPriorityOutreach
	default:
		return enums.ActionLowPriorityMonitoring
	}
}

// HasAutomationTooling reports whether any known automation tool appears in
// the tech stack.
func HasAutomationTooling(stack []string) bool {
	_, ok := firstAutomationTool(stack)
	return ok
}

// HasOperationsHiring reports whether any recent job post matches the
// operations hiring keywords.
func HasOperationsHiring(posts []string) bool {
	_, ok := firstOperationsPost(posts)
	return ok
}

func containsFold(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if strings.EqualFold(candidate, needle) {
			return true
		}
	}
	return false
}

func firstAutomationTool(stack []string) (string, bool) {
	for _, entry := range stack {
		if containsFold(automationTools, strings.TrimSpace(entry)) {
			return strings.TrimSpace(entry), true
		}
	}
	return "", false
}

func firstOperationsPost(posts []string) (string, bool) {
	for _, post := range posts {
		lowered := strings.ToLower(post)
		for _, keyword := range operationsHiringKeywords {
			if strings.Contains(lowered, keyword) {
				return post, true
			}
		}
	}
	return "", false
}
