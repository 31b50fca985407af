package models

import (
	"time"

	"github.com/brimhq/growth-engine/pkg/enums"
)

// OutboundEmail is a generated piece of outreach copy waiting in the send
// queue. Score is frozen at generation time; is_sent flips exactly once when
// the dispatch worker picks the row up.
type OutboundEmail struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyID string `gorm:"column:company_id;type:text;not null;index"`
	Score     int    `gorm:"column:score;index"`

	EmailSubject string             `gorm:"column:email_subject;type:text"`
	EmailBody    string             `gorm:"column:email_body;type:text"`
	VariantName  enums.EmailVariant `gorm:"column:variant_name;type:text;default:problem_focused"`

	IsSent       bool `gorm:"column:is_sent;not null;default:false"`
	SendAttempts int  `gorm:"column:send_attempts;not null;default:0"`

	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at"`
}

// TableName keeps the historical table name.
func (OutboundEmail) TableName() string { return "outbound_emails" }
