package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-workorder-service/config"
	"github.com/tnqbao/gau-workorder-service/infra"
	"github.com/tnqbao/gau-workorder-service/repository"
	"github.com/tnqbao/gau-workorder-service/utils"
	"github.com/tnqbao/gau-workorder-service/workflow"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Engine     *workflow.Engine
	Dispatcher *workflow.Dispatcher
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	engine := workflow.New(repo.JobRepo, repo.MaterialRepo, repo.UserRepo)
	dispatcher := workflow.NewDispatcher(infra.Produce.NotificationService, infra.Logger.Slog())
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Engine:     engine,
		Dispatcher: dispatcher,
	}
}

// respondEngineError maps engine error kinds to HTTP status codes. Foreign
// errors (storage failures) become 500s.
func respondEngineError(c *gin.Context, err error) {
	var engineErr *workflow.Error
	if !errors.As(err, &engineErr) {
		utils.JSON500(c, err.Error())
		return
	}
	switch engineErr.Kind {
	case workflow.KindValidation:
		utils.JSON400(c, engineErr.Message)
	case workflow.KindNotFound:
		utils.JSON404(c, engineErr.Message)
	case workflow.KindConflict:
		if len(engineErr.Items) > 0 {
			utils.JSON422(c, gin.H{
				"error": engineErr.Message,
				"code":  engineErr.Code,
				"items": engineErr.Items,
			})
			return
		}
		utils.JSON409(c, engineErr.Message)
	default:
		utils.JSON500(c, engineErr.Message)
	}
}
