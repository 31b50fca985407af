package emails

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/brimhq/growth-engine/pkg/db/models"
	"github.com/brimhq/growth-engine/pkg/enums"
	"github.com/brimhq/growth-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEmailsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func seedEmail(t *testing.T, db *gorm.DB, companyID string, score int) *models.OutboundEmail {
	t.Helper()
	email := &models.OutboundEmail{
		CompanyID:    companyID,
		Score:        score,
		EmailSubject: "subject",
		EmailBody:    "body",
		VariantName:  enums.EmailVariantProblemFocused,
	}
	require.NoError(t, db.Create(email).Error)
	return email
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestListUnsentOrdersByScoreThenID(t *testing.T) {
	db := setupEmailsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedEmail(t, db, "low", 50)
	high := seedEmail(t, db, "high", 95)
	firstTie := seedEmail(t, db, "tie-first", 70)
	seedEmail(t, db, "tie-second", 70)

	rows, err := repo.ListUnsent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, high.ID, rows[0].ID)
	assert.Equal(t, firstTie.ID, rows[1].ID)
	assert.Equal(t, "tie-second", rows[2].CompanyID)
}

func TestMarkSentEmptyIDs(t *testing.T) {
	db := setupEmailsTestDB(t)
	repo := NewRepository(db)

	updated, err := repo.MarkSent(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestSendPrioritizedSendsWholeSmallQueue(t *testing.T) {
	db := setupEmailsTestDB(t)
	ctx := context.Background()

	seedEmail(t, db, "c-70", 70)
	top := seedEmail(t, db, "c-95", 95)
	seedEmail(t, db, "c-50", 50)

	d, err := NewDispatcher(NewRepository(db), gormTxRunner{db: db}, testLogger(), 5)
	require.NoError(t, err)

	result, err := d.SendPrioritized(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)

	var unsent int64
	require.NoError(t, db.Model(&models.OutboundEmail{}).Where("is_sent = ?", false).Count(&unsent).Error)
	assert.Zero(t, unsent)

	var reloaded models.OutboundEmail
	require.NoError(t, db.First(&reloaded, top.ID).Error)
	assert.True(t, reloaded.IsSent)
	assert.Equal(t, 1, reloaded.SendAttempts)
	assert.NotNil(t, reloaded.LastAttemptAt)
}

func TestSendPrioritizedRespectsBatchSize(t *testing.T) {
	db := setupEmailsTestDB(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seedEmail(t, db, "same-score", 80)
	}

	d, err := NewDispatcher(NewRepository(db), gormTxRunner{db: db}, testLogger(), 5)
	require.NoError(t, err)

	result, err := d.SendPrioritized(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Sent)

	var unsent int64
	require.NoError(t, db.Model(&models.OutboundEmail{}).Where("is_sent = ?", false).Count(&unsent).Error)
	assert.Equal(t, int64(2), unsent)
}

func TestSendPrioritizedNeverReselectsSentRows(t *testing.T) {
	db := setupEmailsTestDB(t)
	ctx := context.Background()

	seedEmail(t, db, "only", 90)

	d, err := NewDispatcher(NewRepository(db), gormTxRunner{db: db}, testLogger(), 5)
	require.NoError(t, err)

	first, err := d.SendPrioritized(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	second, err := d.SendPrioritized(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Sent)

	var reloaded models.OutboundEmail
	require.NoError(t, db.First(&reloaded).Error)
	assert.Equal(t, 1, reloaded.SendAttempts)
}

func TestSendPrioritizedEmptyQueueIsNoOp(t *testing.T) {
	db := setupEmailsTestDB(t)

	d, err := NewDispatcher(NewRepository(db), gormTxRunner{db: db}, testLogger(), 5)
	require.NoError(t, err)

	result, err := d.SendPrioritized(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
}
