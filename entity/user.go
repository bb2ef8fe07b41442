package entity

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleLead  UserRole = "lead"
	UserRoleTech  UserRole = "tech"
)

// User is a lead or technician eligible for assignment. JobsThisMonth is a
// rolling workload counter used only to order availability results.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" binding:"required" gorm:"type:varchar(255);not null"`
	Department    string    `json:"department" gorm:"type:varchar(128)"`
	Position      string    `json:"position" gorm:"type:varchar(128)"`
	Role          UserRole  `json:"role" binding:"required,oneof=admin lead tech" gorm:"type:varchar(32);not null;index"`
	JobsThisMonth int       `json:"jobs_this_month" gorm:"not null;default:0"`
}
