package analytics

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/brimhq/growth-engine/internal/events"
	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_type TEXT NOT NULL,
  company_id TEXT,
  user_id TEXT,
  event_data TEXT,
  timestamp DATETIME
);`).Error)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS outbound_emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id TEXT NOT NULL,
  score INTEGER NOT NULL DEFAULT 0,
  email_subject TEXT,
  email_body TEXT,
  variant_name TEXT NOT NULL DEFAULT 'problem_focused',
  is_sent INTEGER NOT NULL DEFAULT 0,
  send_attempts INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  last_attempt_at DATETIME
);`).Error)
	return db
}

func newAnalyticsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	require.NoError(t, err)
	return svc
}

func strPtr(v string) *string { return &v }

func seedScoreEvent(t *testing.T, db *gorm.DB, companyID, companyName string, score int, at time.Time) {
	t.Helper()
	raw, err := json.Marshal(events.ScoreCalculatedPayload{
		ModelUsed:   enums.ScoringModelBalanced,
		Score:       score,
		CompanyName: companyName,
	})
	require.NoError(t, err)
	event := &models.Event{
		EventType: enums.EventScoreCalculated,
		CompanyID: strPtr(companyID),
		EventData: raw,
	}
	require.NoError(t, db.Create(event).Error)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Update("timestamp", at).Error)
}

func seedActivationEvent(t *testing.T, db *gorm.DB, userID string, step enums.ActivationStep, at time.Time) {
	t.Helper()
	raw, err := json.Marshal(events.ActivationStepPayload{Step: step})
	require.NoError(t, err)
	event := &models.Event{
		EventType: enums.EventActivationStepCompleted,
		UserID:    strPtr(userID),
		EventData: raw,
	}
	require.NoError(t, db.Create(event).Error)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Update("timestamp", at).Error)
}

func seedSentEmail(t *testing.T, db *gorm.DB, companyID string, score int, variant enums.EmailVariant, sentAt time.Time) {
	t.Helper()
	email := &models.OutboundEmail{
		CompanyID:    companyID,
		Score:        score,
		VariantName:  variant,
		IsSent:       true,
		SendAttempts: 1,
	}
	require.NoError(t, db.Create(email).Error)
	require.NoError(t, db.Model(&models.OutboundEmail{}).Where("id = ?", email.ID).Update("last_attempt_at", sentAt).Error)
}

func TestScoreDistributionBins(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	now := time.Now().UTC()

	seedScoreEvent(t, db, "c1", "One", 5, now)
	seedScoreEvent(t, db, "c2", "Two", 10, now)
	seedScoreEvent(t, db, "c3", "Three", 11, now)
	seedScoreEvent(t, db, "c4", "Four", 85, now)
	seedScoreEvent(t, db, "c5", "Five", 100, now)

	bins, err := newAnalyticsService(t, db).ScoreDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, bins, 10)

	assert.Equal(t, "0-10", bins[0].Label)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, "11-20", bins[1].Label)
	assert.Equal(t, 1, bins[1].Count)
	assert.Equal(t, "81-90", bins[8].Label)
	assert.Equal(t, 1, bins[8].Count)
	assert.Equal(t, "91-100", bins[9].Label)
	assert.Equal(t, 1, bins[9].Count)
}

func TestTopLeadsUsesLatestScorePerCompany(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	now := time.Now().UTC()

	seedScoreEvent(t, db, "acme", "Acme", 95, now.Add(-2*time.Hour))
	seedScoreEvent(t, db, "acme", "Acme", 60, now.Add(-time.Hour))
	seedScoreEvent(t, db, "globex", "Globex", 80, now)

	leads, err := newAnalyticsService(t, db).TopLeads(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "globex", leads[0].CompanyID)
	assert.Equal(t, 80, leads[0].Score)
	assert.Equal(t, "acme", leads[1].CompanyID)
	assert.Equal(t, 60, leads[1].Score, "only the most recent score should count")
}

func TestActivationFunnelZeroFillsFixedSteps(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	now := time.Now().UTC()

	seedActivationEvent(t, db, "u1", enums.StepFileUpload, now)
	seedActivationEvent(t, db, "u1", enums.StepFileUpload, now)
	seedActivationEvent(t, db, "u2", enums.StepFileUpload, now)

	funnel, err := newAnalyticsService(t, db).ActivationFunnel(context.Background())
	require.NoError(t, err)
	require.Len(t, funnel, 3)

	assert.Equal(t, enums.StepFileUpload, funnel[0].StepName)
	assert.Equal(t, 2, funnel[0].UserCount, "duplicate completions count one user once")
	assert.Equal(t, enums.StepResultViewed, funnel[1].StepName)
	assert.Zero(t, funnel[1].UserCount)
	assert.Equal(t, enums.StepShareStepReached, funnel[2].StepName)
	assert.Zero(t, funnel[2].UserCount)
}

func TestEmailPerformanceGroupsByVariant(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	now := time.Now().UTC()

	seedSentEmail(t, db, "a", 80, enums.EmailVariantProblemFocused, now)
	seedSentEmail(t, db, "b", 85, enums.EmailVariantROIFocused, now)
	seedSentEmail(t, db, "c", 90, enums.EmailVariantROIFocused, now)

	counts, err := newAnalyticsService(t, db).EmailPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)

	byVariant := map[enums.EmailVariant]int64{}
	for _, c := range counts {
		byVariant[c.VariantName] = c.Count
	}
	assert.Equal(t, int64(1), byVariant[enums.EmailVariantProblemFocused])
	assert.Equal(t, int64(2), byVariant[enums.EmailVariantROIFocused])
}

func TestLeadsTableJoinsSentStatus(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	now := time.Now().UTC()

	seedScoreEvent(t, db, "acme", "Acme", 90, now)
	seedScoreEvent(t, db, "globex", "Globex", 70, now)
	seedSentEmail(t, db, "acme", 90, enums.EmailVariantROIFocused, now)

	table, err := newAnalyticsService(t, db).LeadsTable(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "acme", table[0].CompanyID)
	assert.Equal(t, LeadStatusSent, table[0].Status)
	assert.Equal(t, string(enums.EmailVariantROIFocused), table[0].EmailVariantSent)

	assert.Equal(t, "globex", table[1].CompanyID)
	assert.Equal(t, LeadStatusPending, table[1].Status)
	assert.Empty(t, table[1].EmailVariantSent)
}
