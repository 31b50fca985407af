package emails

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/internal/scoring"
	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type contentClient interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// SelectVariant applies the deterministic variant cascade for a scored lead.
func SelectVariant(company scoring.CompanyInput, result scoring.ScoringOutput) enums.EmailVariant {
	if scoring.HasOperationsHiring(company.RecentJobPosts) || scoring.HasAutomationTooling(company.TechStack) {
		return enums.EmailVariantProblemFocused
	}
	if company.EmployeeCount != nil && *company.EmployeeCount > 75 {
		return enums.EmailVariantROIFocused
	}
	switch company.FundingStage {
	case "Series B", "Series C":
		return enums.EmailVariantROIFocused
	}
	if result.TotalScore > 75 {
		return enums.EmailVariantROIFocused
	}
	return enums.EmailVariantProblemFocused
}

type generatedContent struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	VariantName string `json:"variant_name"`
}

type generator struct {
	client contentClient
	repo   Repository
	tx     txRunner
	events events.Service
	logg   *logger.Logger
}

// NewGenerator builds the content generation side of the queue.
func NewGenerator(client contentClient, repo Repository, tx txRunner, eventsSvc events.Service, logg *logger.Logger) (Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("content client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("emails repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if eventsSvc == nil {
		return nil, fmt.Errorf("events service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &generator{client: client, repo: repo, tx: tx, events: eventsSvc, logg: logg}, nil
}

// Generate calls the external generator once and, on a well-formed response,
// persists the email row together with its email_generated event. A malformed
// response aborts with no partial state and no retry.
func (g *generator) Generate(ctx context.Context, company scoring.CompanyInput, result scoring.ScoringOutput) (*models.OutboundEmail, error) {
	variant := SelectVariant(company, result)
	prompt := buildPrompt(company, result, variant)

	raw, err := g.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate email content: %w", err)
	}

	content, err := parseContent(raw)
	if err != nil {
		g.logg.Error(g.logg.WithCompanyID(ctx, result.CompanyID), "discarding malformed generation response", err)
		return nil, err
	}

	email := &models.OutboundEmail{
		CompanyID:    result.CompanyID,
		Score:        result.TotalScore,
		EmailSubject: content.Subject,
		EmailBody:    content.Body,
		VariantName:  variant,
	}
	err = g.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := g.repo.WithTx(tx).Create(ctx, email); err != nil {
			return err
		}
		return g.events.LogEmailGenerated(ctx, tx, result.CompanyID, events.EmailGeneratedPayload{
			EmailID:     email.ID,
			VariantName: variant,
			Score:       result.TotalScore,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("persist generated email: %w", err)
	}

	g.logg.Info(g.logg.WithCompanyID(ctx, result.CompanyID), "outbound email queued")
	return email, nil
}

func parseContent(raw string) (generatedContent, error) {
	var content generatedContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return generatedContent{}, fmt.Errorf("decode generated content: %w", err)
	}
	if strings.TrimSpace(content.Subject) == "" ||
		strings.TrimSpace(content.Body) == "" ||
		strings.TrimSpace(content.VariantName) == "" {
		return generatedContent{}, fmt.Errorf("generated content missing required fields")
	}
	return content, nil
}

func buildPrompt(company scoring.CompanyInput, result scoring.ScoringOutput, variant enums.EmailVariant) string {
	var angle string
	switch variant {
	case enums.EmailVariantROIFocused:
		angle = "Lead with the return on investment: time saved, revenue unlocked, payback period."
	default:
		angle = "Lead with the operational pain: manual work, tool sprawl, processes that break at scale."
	}

	var b strings.Builder
	b.WriteString("You are writing cold outreach for Brim, a workflow automation platform.\n")
	fmt.Fprintf(&b, "Company: %s\n", company.CompanyName)
	if company.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", company.Industry)
	}
	if company.EmployeeCount != nil {
		fmt.Fprintf(&b, "Employees: %d\n", *company.EmployeeCount)
	}
	if len(company.TechStack) > 0 {
		fmt.Fprintf(&b, "Known tools: %s\n", strings.Join(company.TechStack, ", "))
	}
	if len(company.RecentJobPosts) > 0 {
		fmt.Fprintf(&b, "Recent job posts: %s\n", strings.Join(company.RecentJobPosts, "; "))
	}
	fmt.Fprintf(&b, "Lead score: %d/100\n", result.TotalScore)
	fmt.Fprintf(&b, "Angle: %s\n", angle)
	fmt.Fprintf(&b, "Respond with a single JSON object with exactly these keys: "+
		"\"subject\" (under 60 characters), \"body\" (under 120 words, plain text), "+
		"\"variant_name\" (the string %q).\n", string(variant))
	return b.String()
}
