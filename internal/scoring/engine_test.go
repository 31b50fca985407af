package scoring

import (
	"strings"
	"testing"

	"github.com/brimhq/growth-engine/pkg/enums"
)

func intPtr(v int) *int { return &v }

func perfectFitCompany() CompanyInput {
	return CompanyInput{
		CompanyName:    "Perfect Fit Inc.",
		EmployeeCount:  intPtr(120),
		Industry:       "SaaS",
		FundingStage:   "Series B",
		TechStack:      []string{"Zapier", "Postgres"},
		RecentJobPosts: []string{"Head of Operations"},
		NewsMentions:   []string{"Raised Series B"},
	}
}

func TestCalculatePerfectFit(t *testing.T) {
	out, err := Calculate(perfectFitCompany(), enums.ScoringModelBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TotalScore <= 80 {
		t.Fatalf("expected total score above 80, got %d", out.TotalScore)
	}
	if out.Action != enums.ActionHighPriorityOutreach {
		t.Fatalf("expected high priority action, got %s", out.Action)
	}
	if out.Confidence != 1.0 {
		t.Fatalf("expected full confidence, got %v", out.Confidence)
	}

	wantMentions := []string{"size", "SaaS", "Zapier", "Operations"}
	joined := strings.Join(out.Reasoning.Positive, " | ")
	for _, fragment := range wantMentions {
		if !strings.Contains(joined, fragment) {
			t.Errorf("positive reasoning missing %q: %v", fragment, out.Reasoning.Positive)
		}
	}
	if len(out.Reasoning.Missing) != 0 {
		t.Errorf("expected nothing missing, got %v", out.Reasoning.Missing)
	}
}

func TestCalculateNameOnly(t *testing.T) {
	out, err := Calculate(CompanyInput{CompanyName: "Mystery Co"}, enums.ScoringModelBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Confidence >= 0.3 {
		t.Fatalf("expected low confidence for name-only input, got %v", out.Confidence)
	}
	for _, field := range []string{"employee_count", "industry", "tech_stack", "recent_job_posts"} {
		if !containsString(out.Reasoning.Missing, field) {
			t.Errorf("expected %s in missing list, got %v", field, out.Reasoning.Missing)
		}
	}
	if out.TotalScore != 0 {
		t.Fatalf("expected zero score with no signals, got %d", out.TotalScore)
	}
	if out.Action != enums.ActionLowPriorityMonitoring {
		t.Fatalf("expected low priority action, got %s", out.Action)
	}
}

func TestCalculateRequiresCompanyName(t *testing.T) {
	if _, err := Calculate(CompanyInput{CompanyName: "  "}, enums.ScoringModelBalanced); err == nil {
		t.Fatal("expected error for blank company name")
	}
}

func TestCalculateScoreBounds(t *testing.T) {
	inputs := []CompanyInput{
		perfectFitCompany(),
		{CompanyName: "Tiny Shop", EmployeeCount: intPtr(2), Industry: "Retail", TechStack: []string{"Excel"}},
		{CompanyName: "Mega Corp", EmployeeCount: intPtr(50000), Industry: "Manufacturing"},
		{CompanyName: "Adjacent Labs", EmployeeCount: intPtr(15), Industry: "Healthcare", RecentJobPosts: []string{"Sales Rep"}},
	}
	for _, in := range inputs {
		out, err := Calculate(in, enums.ScoringModelBalanced)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in.CompanyName, err)
		}
		for name, score := range map[string]int{"fit": out.FitScore, "intent": out.IntentScore, "total": out.TotalScore} {
			if score < 0 || score > 100 {
				t.Errorf("%s: %s score %d out of bounds", in.CompanyName, name, score)
			}
		}
	}
}

func TestCompanyIDStability(t *testing.T) {
	base, err := Calculate(CompanyInput{CompanyName: "Acme"}, enums.ScoringModelBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	richer, err := Calculate(perfectFitCompanyNamed("Acme"), enums.ScoringModelAggressive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.CompanyID != richer.CompanyID {
		t.Fatalf("company id should depend only on name: %q vs %q", base.CompanyID, richer.CompanyID)
	}
	if len(base.CompanyID) != companyIDLength {
		t.Fatalf("expected %d hex chars, got %q", companyIDLength, base.CompanyID)
	}
	other, _ := Calculate(CompanyInput{CompanyName: "Acme 2"}, enums.ScoringModelBalanced)
	if other.CompanyID == base.CompanyID {
		t.Fatal("different names produced identical company ids")
	}
}

func perfectFitCompanyNamed(name string) CompanyInput {
	in := perfectFitCompany()
	in.CompanyName = name
	return in
}

func TestCalculateAdjacentSizeBand(t *testing.T) {
	out, err := Calculate(CompanyInput{CompanyName: "Mid Co", EmployeeCount: intPtr(500)}, enums.ScoringModelBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FitScore != 50 {
		t.Fatalf("expected adjacent size band score 50, got %d", out.FitScore)
	}
	if len(out.Reasoning.Negative) != 0 {
		t.Fatalf("adjacent band should not add negatives, got %v", out.Reasoning.Negative)
	}
}

func TestCalculateNoAutomationTooling(t *testing.T) {
	out, err := Calculate(CompanyInput{
		CompanyName: "Spreadsheet Inc",
		TechStack:   []string{"Excel", "Sheets"},
	}, enums.ScoringModelBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.IntentScore != 20 {
		t.Fatalf("expected baseline intent 20 without automation tooling, got %d", out.IntentScore)
	}
	if !containsString(out.Reasoning.Negative, "No automation tooling in tech stack") {
		t.Fatalf("expected negative reason about automation tooling, got %v", out.Reasoning.Negative)
	}
}

func TestCalculateModelsAreAccepted(t *testing.T) {
	for _, model := range []enums.ScoringModel{
		enums.ScoringModelConservative,
		enums.ScoringModelAggressive,
		enums.ScoringModelBalanced,
	} {
		if _, err := Calculate(perfectFitCompany(), model); err != nil {
			t.Fatalf("model %s: unexpected error: %v", model, err)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
