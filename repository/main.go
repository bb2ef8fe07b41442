package repository

import (
	"github.com/tnqbao/gau-workorder-service/infra"
	"gorm.io/gorm"
)

type Repository struct {
	JobRepo      *JobRepository
	MaterialRepo *MaterialRepository
	UserRepo     *UserRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		JobRepo:      NewJobRepository(infra.Postgres.DB),
		MaterialRepo: NewMaterialRepository(infra.Postgres.DB),
		UserRepo:     NewUserRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return &Repository{
		JobRepo:      NewJobRepository(tx),
		MaterialRepo: NewMaterialRepository(tx),
		UserRepo:     NewUserRepository(tx),
	}
}
