package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-workorder-service/http/controller/dto"
	"github.com/tnqbao/gau-workorder-service/utils"
	"github.com/tnqbao/gau-workorder-service/workflow"
)

func (ctrl *Controller) CreateJob(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Actor not found in context: %v", err)
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.CreateJobRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	job, events, err := ctrl.Engine.CreateJob(ctx, workflow.CreateJobInput{
		Title:         req.Title,
		JobType:       req.JobType,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to create job: %v", err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Created job %s by %s", job.ID, actor.Name)
	utils.JSON201(c, gin.H{
		"message": "Job created successfully",
		"job":     job,
	})
}

func (ctrl *Controller) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()
	jobs, err := ctrl.Engine.ListJobs(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to list jobs: %v", err)
		utils.JSON500(c, "Failed to list jobs")
		return
	}
	utils.JSON200(c, gin.H{"jobs": jobs})
}

func (ctrl *Controller) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	job, err := ctrl.Engine.GetJob(ctx, c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.JSON200(c, gin.H{"job": job})
}

func (ctrl *Controller) UpdateJob(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.UpdateJobRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	jobID := c.Param("id")
	job, events, err := ctrl.Engine.UpdateJob(ctx, jobID, workflow.JobPatch{
		Title:         req.Title,
		JobType:       req.JobType,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}, req.Reason, actor)
	if workflow.IsNoChange(err) {
		ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Update of %s matched current state, nothing to do", jobID)
		utils.JSON200(c, gin.H{
			"message": "No changes detected",
			"job":     job,
		})
		return
	}
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to update job %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Updated job %s by %s", jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Job updated successfully",
		"job":     job,
	})
}

func (ctrl *Controller) DeleteJob(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.DeleteJobRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "A reason is required to delete a job")
		return
	}

	jobID := c.Param("id")
	events, err := ctrl.Engine.DeleteJob(ctx, jobID, req.Reason, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to delete job %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Deleted job %s by %s", jobID, actor.Name)
	utils.JSON200(c, gin.H{"message": "Job deleted successfully"})
}

func (ctrl *Controller) AcknowledgeJob(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	jobID := c.Param("id")
	job, events, err := ctrl.Engine.AcknowledgeJob(ctx, jobID, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to acknowledge job %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Job %s acknowledged by %s", jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Job acknowledged",
		"job":     job,
	})
}

func (ctrl *Controller) CompleteJob(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	jobID := c.Param("id")
	job, events, err := ctrl.Engine.CompleteJob(ctx, jobID, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to complete job %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Job %s completed by %s", jobID, actor.Name)
	utils.JSON200(c, gin.H{
		"message": "Job completed",
		"job":     job,
	})
}

func (ctrl *Controller) AssignLead(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.AssignLeadRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	jobID := c.Param("id")
	job, events, err := ctrl.Engine.AssignLead(ctx, jobID, req.LeadID, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to assign lead on %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Lead %s assigned to job %s", req.LeadID, jobID)
	utils.JSON200(c, gin.H{
		"message": "Lead assigned",
		"job":     job,
	})
}

func (ctrl *Controller) AssignTechnicians(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: actor identity not found")
		return
	}

	var req dto.AssignTechniciansRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	jobID := c.Param("id")
	job, events, err := ctrl.Engine.AssignTechnicians(ctx, jobID, req.TechIDs, actor)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Job] Failed to assign technicians on %s: %v", jobID, err)
		respondEngineError(c, err)
		return
	}
	ctrl.Dispatcher.Dispatch(ctx, events)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Job] Technicians assigned to job %s", jobID)
	utils.JSON200(c, gin.H{
		"message": "Technicians assigned",
		"job":     job,
	})
}
