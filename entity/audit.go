package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EditHistory is one append-only record of an administrative field edit.
// Changes holds the names of the fields that actually differed, as a JSONB
// string array. Exactly one entry is written per update that changed
// something; no-op updates write nothing.
type EditHistory struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	JobID     string         `json:"job_id" gorm:"type:varchar(64);not null;index"`
	AdminName string         `json:"admin_name" gorm:"type:varchar(255);not null"`
	Reason    string         `json:"reason" gorm:"type:text;not null"`
	Changes   datatypes.JSON `json:"changes" gorm:"type:jsonb;not null"`
	EditedAt  time.Time      `json:"edited_at" gorm:"not null"`
}

// ChangedFields decodes the JSONB field-name array.
func (e *EditHistory) ChangedFields() []string {
	var fields []string
	if err := json.Unmarshal(e.Changes, &fields); err != nil {
		return nil
	}
	return fields
}

// ActivityEntry is one append-only workflow event on a job's activity log,
// distinct from field-edit history.
type ActivityEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	JobID     string    `json:"job_id" gorm:"type:varchar(64);not null;index"`
	Action    string    `json:"action" gorm:"type:varchar(128);not null"`
	Detail    string    `json:"detail" gorm:"type:text"`
	ActorName string    `json:"actor_name" gorm:"type:varchar(255);not null"`
	LoggedAt  time.Time `json:"logged_at" gorm:"not null"`
}
