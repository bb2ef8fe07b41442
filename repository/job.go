package repository

import (
	"context"
	"errors"

	"github.com/tnqbao/gau-workorder-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository is the gorm-backed implementation of the workflow JobStore
// port. Children are loaded in pipeline/append order so the engine sees the
// same ordering it wrote.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tasks.Updates", func(db *gorm.DB) *gorm.DB { return db.Order("updated_at ASC") }).
		Preload("Tasks.Materials", func(db *gorm.DB) *gorm.DB { return db.Order("withdrawn_at ASC") }).
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB { return db.Order("edited_at ASC") }).
		Preload("ActivityLog", func(db *gorm.DB) *gorm.DB { return db.Order("logged_at ASC") })
}

func (r *JobRepository) List(ctx context.Context) ([]entity.Job, error) {
	var jobs []entity.Job
	err := r.preloaded(ctx).Order("created_at ASC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*entity.Job, error) {
	var job entity.Job
	err := r.preloaded(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Update persists the job and every nested child in one transaction. A row
// lock on the job serializes concurrent writers across processes.
func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", job.ID).First(&current).Error
		if err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(job).Error
	})
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Job{}, "id = ?", id).Error
}
