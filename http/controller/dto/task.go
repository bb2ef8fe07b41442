package dto

import "github.com/google/uuid"

type CreateTaskRequestDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type RejectTaskRequestDTO struct {
	Reason   string `json:"reason" binding:"required"`
	ImageURL string `json:"image_url"`
}

type TaskProgressRequestDTO struct {
	Message  string `json:"message" binding:"required"`
	ImageURL string `json:"image_url"`
}

type WithdrawalLineDTO struct {
	MaterialID uuid.UUID `json:"material_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required"`
}

type WithdrawMaterialsRequestDTO struct {
	Items []WithdrawalLineDTO `json:"items" binding:"required,min=1"`
}
