package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// NormalizeTaskStatus maps legacy status aliases ("done" was used
// interchangeably with "completed" in imported data) onto the canonical enum.
func NormalizeTaskStatus(s string) TaskStatus {
	switch s {
	case "done":
		return TaskStatusCompleted
	case "in_progress", "inprogress":
		return TaskStatusInProgress
	default:
		return TaskStatus(s)
	}
}

// Task is one ordered step in a job's pipeline. Position fixes the approval
// order; tasks are only ever appended, never reordered.
type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	JobID       string     `json:"job_id" gorm:"type:varchar(64);not null;index"`
	Position    int        `json:"position" gorm:"not null"`
	Title       string     `json:"title" binding:"required" gorm:"type:varchar(512);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      TaskStatus `json:"status" binding:"omitempty,oneof=pending in-progress completed" gorm:"type:varchar(32);not null"`

	Updates   []TaskUpdate         `json:"updates" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Materials []MaterialWithdrawal `json:"materials" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// AfterFind normalizes legacy status aliases read from storage.
func (t *Task) AfterFind(*gorm.DB) error {
	t.Status = NormalizeTaskStatus(string(t.Status))
	return nil
}

// TaskUpdate is an append-only progress entry. Entries are never edited or
// removed once written.
type TaskUpdate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	ImageURL  string    `json:"image_url,omitempty" gorm:"type:varchar(1024)"`
	UpdatedBy string    `json:"updated_by" gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// MaterialWithdrawal records stock drawn from the shared ledger for a task.
// Immutable once recorded.
type MaterialWithdrawal struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID       uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID `json:"material_id" gorm:"type:uuid;not null;index"`
	MaterialName string    `json:"material_name" gorm:"type:varchar(255);not null"`
	Unit         string    `json:"unit" gorm:"type:varchar(64)"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	WithdrawnBy  string    `json:"withdrawn_by" gorm:"type:varchar(255);not null"`
	WithdrawnAt  time.Time `json:"withdrawn_at" gorm:"not null"`
}
