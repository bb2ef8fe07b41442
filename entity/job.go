package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusNew        JobStatus = "new"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusDone       JobStatus = "done"
)

// NormalizeJobStatus maps legacy status aliases found in imported data onto
// the canonical enum. Unknown values pass through unchanged so they surface
// in validation instead of being silently rewritten.
func NormalizeJobStatus(s string) JobStatus {
	switch s {
	case "completed", "finished":
		return JobStatusDone
	case "in_progress", "inprogress":
		return JobStatusInProgress
	default:
		return JobStatus(s)
	}
}

type Job struct {
	ID            string         `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title         string         `json:"title" binding:"required" gorm:"type:varchar(512);not null"`
	JobType       string         `json:"job_type" gorm:"type:varchar(128);index"`
	CustomerName  string         `json:"customer_name" gorm:"type:varchar(255)"`
	CustomerPhone string         `json:"customer_phone" gorm:"type:varchar(64)"`
	Location      string         `json:"location" gorm:"type:varchar(1024)"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	StartDate     time.Time      `json:"start_date" gorm:"not null;index"`
	EndDate       time.Time      `json:"end_date" gorm:"not null;index"`
	LeadID        *string        `json:"lead_id,omitempty" gorm:"type:varchar(64);index"`
	AssignedTechs datatypes.JSON `json:"assigned_techs" gorm:"type:jsonb"`
	Status        JobStatus      `json:"status" binding:"omitempty,oneof=new in-progress done" gorm:"type:varchar(32);not null;index"`
	AdminCreator  string         `json:"admin_creator" gorm:"type:varchar(255);not null"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`

	Tasks       []Task          `json:"tasks" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	EditHistory []EditHistory   `json:"edit_history" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	ActivityLog []ActivityEntry `json:"activity_log" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// AfterFind normalizes legacy status aliases read from storage.
func (j *Job) AfterFind(*gorm.DB) error {
	j.Status = NormalizeJobStatus(string(j.Status))
	return nil
}

// TechIDs decodes the assigned technician set from its JSONB column.
func (j *Job) TechIDs() []string {
	if len(j.AssignedTechs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(j.AssignedTechs, &ids); err != nil {
		return nil
	}
	return ids
}

// SetTechIDs encodes the assigned technician set into the JSONB column.
func (j *Job) SetTechIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	j.AssignedTechs = data
	return nil
}

// HasTech reports whether a technician id is part of the assigned set.
func (j *Job) HasTech(id string) bool {
	for _, t := range j.TechIDs() {
		if t == id {
			return true
		}
	}
	return false
}
