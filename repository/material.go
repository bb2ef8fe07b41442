package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
	"github.com/tnqbao/gau-workorder-service/workflow"
	"gorm.io/gorm"
)

// MaterialRepository is the gorm-backed implementation of the workflow
// MaterialStore port.
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) List(ctx context.Context) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).Order("name ASC").Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *MaterialRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&material).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) Create(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

// DecrementBatch applies all decrements or none. Each line is a conditional
// UPDATE guarded by the stock level; a missed guard aborts the whole
// transaction, so a race with another process can never drive stock
// negative.
func (r *MaterialRepository) DecrementBatch(ctx context.Context, lines []workflow.StockDecrement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			res := tx.Model(&entity.Material{}).
				Where("id = ? AND stock >= ?", line.MaterialID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &workflow.Error{
					Kind:    workflow.KindConflict,
					Code:    workflow.CodeInsufficientStock,
					Message: "stock changed concurrently, withdrawal aborted",
					Items: []workflow.ItemError{{
						MaterialID: line.MaterialID,
						Code:       workflow.CodeInsufficientStock,
						Requested:  line.Quantity,
					}},
				}
			}
		}
		return nil
	})
}
