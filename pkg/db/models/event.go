package models

import (
	"encoding/json"
	"time"

	"github.com/brimhq/growth-engine/pkg/enums"
)

// Event is one row of the append-only event log. Rows are written once and
// never updated or deleted; id and timestamp are assigned by the store.
type Event struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	EventType enums.EventType `gorm:"column:event_type;type:text;not null;index"`
	CompanyID *string         `gorm:"column:company_id;type:text;index"`
	UserID    *string         `gorm:"column:user_id;type:text;index"`
	EventData json.RawMessage `gorm:"column:event_data;type:jsonb"`
	Timestamp time.Time       `gorm:"column:timestamp;autoCreateTime;index"`
}

// TableName keeps the historical table name.
func (Event) TableName() string { return "events" }
