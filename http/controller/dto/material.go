package dto

type CreateMaterialRequestDTO struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Stock    int    `json:"stock" binding:"min=0"`
}

type CreateUserRequestDTO struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Role       string `json:"role" binding:"required,oneof=admin lead tech"`
}
