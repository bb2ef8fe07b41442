package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// findTask locates a task by id within the job's ordered pipeline.
func findTask(job *entity.Job, taskID uuid.UUID) (*entity.Task, int) {
	for i := range job.Tasks {
		if job.Tasks[i].ID == taskID {
			return &job.Tasks[i], i
		}
	}
	return nil, -1
}

// AdvanceTask completes a pipeline step. It succeeds only when every
// preceding task is already completed; otherwise the job is untouched and a
// StepOutOfOrder conflict is returned. Completing a step auto-promotes an
// immediately following pending task to in-progress.
func (e *Engine) AdvanceTask(ctx context.Context, jobID string, taskID uuid.UUID, actor Actor) (*entity.Job, []Event, error) {
	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}
	if job.Status != entity.JobStatusInProgress {
		return nil, nil, conflictErr(CodeNotAcknowledged, "job %s has not been acknowledged", jobID)
	}

	task, idx := findTask(job, taskID)
	if task == nil {
		return nil, nil, notFoundErr(CodeTaskNotFound, "task %s not found in job %s", taskID, jobID)
	}
	if task.Status == entity.TaskStatusCompleted {
		return nil, nil, conflictErr(CodeWrongStatus, "task %q is already completed", task.Title)
	}
	for i := 0; i < idx; i++ {
		if job.Tasks[i].Status != entity.TaskStatusCompleted {
			return nil, nil, conflictErr(CodeStepOutOfOrder, "task %q cannot advance before %q is completed",
				task.Title, job.Tasks[i].Title)
		}
	}

	now := e.now()
	task.Status = entity.TaskStatusCompleted
	if idx+1 < len(job.Tasks) && job.Tasks[idx+1].Status == entity.TaskStatusPending {
		job.Tasks[idx+1].Status = entity.TaskStatusInProgress
	}
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "task.advanced",
		Detail:    task.Title,
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	events := techEvents(job, EventTaskAdvanced, map[string]string{
		"task":     task.Title,
		"approver": actor.Name,
	}, now)
	return job, events, nil
}

// RejectTask sends a step back to pending with a mandatory reason. The
// rejection is recorded as an append-only task update; the step must then be
// advanced again before anything after it can proceed.
func (e *Engine) RejectTask(ctx context.Context, jobID string, taskID uuid.UUID, actor Actor, reason, imageURL string) (*entity.Job, []Event, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, nil, validationErr(CodeEmptyReason, "a reason is required to reject a task")
	}

	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}
	if job.Status != entity.JobStatusInProgress {
		return nil, nil, conflictErr(CodeNotAcknowledged, "job %s has not been acknowledged", jobID)
	}

	task, _ := findTask(job, taskID)
	if task == nil {
		return nil, nil, notFoundErr(CodeTaskNotFound, "task %s not found in job %s", taskID, jobID)
	}
	if task.Status == entity.TaskStatusPending {
		return nil, nil, conflictErr(CodeWrongStatus, "task %q is pending, nothing to reject", task.Title)
	}

	now := e.now()
	task.Status = entity.TaskStatusPending
	task.Updates = append(task.Updates, entity.TaskUpdate{
		ID:        uuid.New(),
		TaskID:    task.ID,
		Message:   fmt.Sprintf("Rejected by %s: %s", actor.Name, reason),
		ImageURL:  imageURL,
		UpdatedBy: actor.Name,
		UpdatedAt: now,
	})
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "task.rejected",
		Detail:    fmt.Sprintf("%s: %s", task.Title, reason),
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	events := techEvents(job, EventTaskRejected, map[string]string{
		"task":   task.Title,
		"reason": reason,
	}, now)
	return job, events, nil
}

// SubmitTaskProgress appends a progress update to a task. Only tasks
// currently in-progress accept updates; a submission never moves the task's
// status, promotion stays with the leader-gated advance.
func (e *Engine) SubmitTaskProgress(ctx context.Context, jobID string, taskID uuid.UUID, actor Actor, message, imageURL string) (*entity.Job, []Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, nil, validationErr(CodeEmptyPatch, "progress message must not be empty")
	}

	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}
	if job.Status != entity.JobStatusInProgress {
		return nil, nil, conflictErr(CodeNotAcknowledged, "job %s has not been acknowledged", jobID)
	}

	task, _ := findTask(job, taskID)
	if task == nil {
		return nil, nil, notFoundErr(CodeTaskNotFound, "task %s not found in job %s", taskID, jobID)
	}
	if task.Status != entity.TaskStatusInProgress {
		return nil, nil, conflictErr(CodeTaskNotActive, "task %q is %s, progress can only be submitted on the active step",
			task.Title, task.Status)
	}

	now := e.now()
	task.Updates = append(task.Updates, entity.TaskUpdate{
		ID:        uuid.New(),
		TaskID:    task.ID,
		Message:   message,
		ImageURL:  imageURL,
		UpdatedBy: actor.Name,
		UpdatedAt: now,
	})
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "task.progress",
		Detail:    task.Title,
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	var events []Event
	if job.LeadID != nil {
		events = append(events, Event{
			Kind:          EventTaskProgress,
			RecipientRole: entity.UserRoleLead,
			RecipientID:   *job.LeadID,
			JobID:         job.ID,
			Payload:       map[string]string{"task": task.Title, "by": actor.Name},
			OccurredAt:    now,
		})
	}
	return job, events, nil
}
