package entity

import "github.com/google/uuid"

// Material is one line of the shared stock ledger. Stock never goes below
// zero; decrements are applied all-or-nothing per withdrawal batch.
type Material struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" binding:"required" gorm:"type:varchar(255);not null;uniqueIndex"`
	Category string    `json:"category" gorm:"type:varchar(128);index"`
	Unit     string    `json:"unit" gorm:"type:varchar(64)"`
	Stock    int       `json:"stock" binding:"min=0" gorm:"not null;check:stock >= 0"`
}
