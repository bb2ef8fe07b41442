package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/http/controller/dto"
	"github.com/tnqbao/gau-workorder-service/utils"
	"github.com/tnqbao/gau-workorder-service/workflow"
)

func (ctrl *Controller) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.CreateTaskRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	jobID := c.Param("id")
	task, events, err := ctrl.Engine.AddTask(ctx, jobID, req.Title, req.Description, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Task] Failed to add task to job %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Task] Task %q added to job %s by %s", req.Title, jobID, actor.Name)
	utils.JSON201(c, gin.H{
		"message": "Task created",
		"task":    task,
	})
}

func (ctrl *Controller) AdvanceTask(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	jobID := c.Param("id")
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		utils.JSON400(c, "Invalid task id")
		return
	}

	job, events, err := ctrl.Engine.AdvanceTask(ctx, jobID, taskID, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Task] Failed to advance task %s on job %s: %v", taskID, jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Task] Task %s advanced on job %s by %s", taskID, jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Task advanced",
		"job":     job,
	})
}

func (ctrl *Controller) RejectTask(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.RejectTaskRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "A reason is required to reject a task")
		return
	}

	jobID := c.Param("id")
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		utils.JSON400(c, "Invalid task id")
		return
	}

	job, events, err := ctrl.Engine.RejectTask(ctx, jobID, taskID, actor, req.Reason, req.ImageURL)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Task] Failed to reject task %s on job %s: %v", taskID, jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Task] Task %s rejected on job %s by %s", taskID, jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Task rejected",
		"job":     job,
	})
}

func (ctrl *Controller) SubmitTaskProgress(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.TaskProgressRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "A progress message is required")
		return
	}

	jobID := c.Param("id")
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		utils.JSON400(c, "Invalid task id")
		return
	}

	job, events, err := ctrl.Engine.SubmitTaskProgress(ctx, jobID, taskID, actor, req.Message, req.ImageURL)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Task] Failed to submit progress on task %s: %v", taskID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	utils.JSON200(c, gin.H{
		"message": "Progress recorded",
		"job":     job,
	})
}

func (ctrl *Controller) WithdrawMaterials(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.WithdrawMaterialsRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	jobID := c.Param("id")
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		utils.JSON400(c, "Invalid task id")
		return
	}

	requests := make([]workflow.WithdrawalRequest, 0, len(req.Items))
	for _, item := range req.Items {
		requests = append(requests, workflow.WithdrawalRequest{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
		})
	}

	job, events, err := ctrl.Engine.WithdrawMaterials(ctx, jobID, taskID, requests, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Material] Withdrawal failed on task %s: %v", taskID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	// Stock changed, drop the cached catalog
	if err := ctrl.Infra.Redis.Delete(ctx, materialCatalogCacheKey); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Material] Failed to invalidate catalog cache: %v", err)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Material] Stock withdrawn for task %s on job %s by %s", taskID, jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Materials withdrawn",
		"job":     job,
	})
}
