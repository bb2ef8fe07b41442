package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateJobRequestDTO struct {
	Title         string    `json:"title" binding:"required"`
	JobType       string    `json:"job_type"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Location      string    `json:"location"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
}

type UpdateJobRequestDTO struct {
	Reason        string     `json:"reason"`
	Title         *string    `json:"title"`
	JobType       *string    `json:"job_type"`
	CustomerName  *string    `json:"customer_name"`
	CustomerPhone *string    `json:"customer_phone"`
	Location      *string    `json:"location"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

type DeleteJobRequestDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type AssignLeadRequestDTO struct {
	LeadID uuid.UUID `json:"lead_id" binding:"required"`
}

type AssignTechniciansRequestDTO struct {
	TechIDs []uuid.UUID `json:"tech_ids" binding:"required"`
}
