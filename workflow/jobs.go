package workflow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// CreateJobInput carries the caller-supplied fields of a new job. Everything
// else (id, status, empty child collections) is set by the engine.
type CreateJobInput struct {
	Title         string
	JobType       string
	CustomerName  string
	CustomerPhone string
	Location      string
	Latitude      *float64
	Longitude     *float64
	StartDate     time.Time
	EndDate       time.Time
}

func (e *Engine) CreateJob(ctx context.Context, in CreateJobInput, actor Actor) (*entity.Job, []Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, validationErr(CodeEmptyPatch, "title must not be empty")
	}
	if in.StartDate.After(in.EndDate) {
		return nil, nil, validationErr(CodeInvalidDateRange, "start date %s is after end date %s",
			in.StartDate.Format("2006-01-02"), in.EndDate.Format("2006-01-02"))
	}

	job := &entity.Job{
		ID:            e.newJobID(),
		Title:         in.Title,
		JobType:       in.JobType,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Location:      in.Location,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        entity.JobStatusNew,
		AdminCreator:  actor.Name,
		CreatedAt:     e.now(),
		Tasks:         []entity.Task{},
		EditHistory:   []entity.EditHistory{},
		ActivityLog:   []entity.ActivityEntry{},
	}
	if err := job.SetTechIDs(nil); err != nil {
		return nil, nil, err
	}

	if err := e.jobs.Create(ctx, job); err != nil {
		return nil, nil, err
	}
	return job, nil, nil
}

// JobPatch is a partial update; nil fields are left untouched. Status is not
// patchable: it only moves through the acknowledge/complete transitions.
type JobPatch struct {
	Title         *string
	JobType       *string
	CustomerName  *string
	CustomerPhone *string
	Location      *string
	Latitude      *float64
	Longitude     *float64
	StartDate     *time.Time
	EndDate       *time.Time
}

// diff applies the patch to the job and returns the names of fields whose
// value actually changed.
func (p JobPatch) diff(job *entity.Job) []string {
	var changed []string

	setStr := func(name string, field *string, val *string) {
		if val != nil && *val != *field {
			*field = *val
			changed = append(changed, name)
		}
	}
	setStr("title", &job.Title, p.Title)
	setStr("job_type", &job.JobType, p.JobType)
	setStr("customer_name", &job.CustomerName, p.CustomerName)
	setStr("customer_phone", &job.CustomerPhone, p.CustomerPhone)
	setStr("location", &job.Location, p.Location)

	setCoord := func(name string, field **float64, val *float64) {
		if val == nil {
			return
		}
		if *field == nil || **field != *val {
			v := *val
			*field = &v
			changed = append(changed, name)
		}
	}
	setCoord("latitude", &job.Latitude, p.Latitude)
	setCoord("longitude", &job.Longitude, p.Longitude)

	if p.StartDate != nil && !p.StartDate.Equal(job.StartDate) {
		job.StartDate = *p.StartDate
		changed = append(changed, "start_date")
	}
	if p.EndDate != nil && !p.EndDate.Equal(job.EndDate) {
		job.EndDate = *p.EndDate
		changed = append(changed, "end_date")
	}
	return changed
}

// UpdateJob applies a field patch. A patch identical to current state returns
// the job untouched with ErrNoChange and writes no history entry. A real
// change requires a non-empty reason and appends exactly one EditHistory
// entry naming the changed fields.
func (e *Engine) UpdateJob(ctx context.Context, jobID string, patch JobPatch, reason string, actor Actor) (*entity.Job, []Event, error) {
	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}

	changed := patch.diff(job)
	if len(changed) == 0 {
		return job, nil, ErrNoChange
	}
	if strings.TrimSpace(reason) == "" {
		return nil, nil, validationErr(CodeEmptyReason, "a reason is required to edit a job")
	}
	if job.StartDate.After(job.EndDate) {
		return nil, nil, validationErr(CodeInvalidDateRange, "start date %s is after end date %s",
			job.StartDate.Format("2006-01-02"), job.EndDate.Format("2006-01-02"))
	}

	now := e.now()
	changesJSON, err := json.Marshal(changed)
	if err != nil {
		return nil, nil, err
	}
	job.EditHistory = append(job.EditHistory, entity.EditHistory{
		ID:        uuid.New(),
		JobID:     job.ID,
		AdminName: actor.Name,
		Reason:    reason,
		Changes:   changesJSON,
		EditedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	events := techEvents(job, EventJobUpdated, map[string]string{
		"title":  job.Title,
		"fields": strings.Join(changed, ","),
	}, now)
	return job, events, nil
}

// DeleteJob removes the job and notifies everyone previously assigned to it.
func (e *Engine) DeleteJob(ctx context.Context, jobID, reason string, actor Actor) ([]Event, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationErr(CodeEmptyReason, "a reason is required to delete a job")
	}

	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}

	if err := e.jobs.Delete(ctx, jobID); err != nil {
		return nil, err
	}
	defer e.forgetJob(jobID)

	now := e.now()
	payload := map[string]string{"title": job.Title, "reason": reason, "deleted_by": actor.Name}
	events := techEvents(job, EventJobDeleted, payload, now)
	if job.LeadID != nil {
		events = append(events, Event{
			Kind:          EventJobDeleted,
			RecipientRole: entity.UserRoleLead,
			RecipientID:   *job.LeadID,
			JobID:         job.ID,
			Payload:       payload,
			OccurredAt:    now,
		})
	}
	return events, nil
}

// AcknowledgeJob is the leader accepting a new job. It is the gate for all
// task pipeline activity.
func (e *Engine) AcknowledgeJob(ctx context.Context, jobID string, actor Actor) (*entity.Job, []Event, error) {
	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}
	if job.Status != entity.JobStatusNew {
		return nil, nil, conflictErr(CodeWrongStatus, "job %s is %s, only new jobs can be acknowledged", jobID, job.Status)
	}

	now := e.now()
	job.Status = entity.JobStatusInProgress
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "job.acknowledged",
		Detail:    "job accepted by lead",
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	events := techEvents(job, EventJobAcknowledged, map[string]string{"title": job.Title}, now)
	return job, events, nil
}

// CompleteJob moves an acknowledged job to done once every pipeline step is
// completed. Whether and when to call it is the caller's policy; the engine
// only verifies the pipeline is closed.
func (e *Engine) CompleteJob(ctx context.Context, jobID string, actor Actor) (*entity.Job, []Event, error) {
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
		return nil, nil, conflictErr(CodeWrongStatus, "job %s is %s, only in-progress jobs can be completed", jobID, job.Status)
	}
	for i := range job.Tasks {
		if job.Tasks[i].Status != entity.TaskStatusCompleted {
			return nil, nil, conflictErr(CodePipelineOpen, "task %q is still %s", job.Tasks[i].Title, job.Tasks[i].Status)
		}
	}

	now := e.now()
	job.Status = entity.JobStatusDone
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "job.completed",
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	events := techEvents(job, EventJobCompleted, map[string]string{"title": job.Title}, now)
	return job, events, nil
}

// AddTask appends a pipeline step. Only legal after acknowledgement. The
// first task of a job starts in-progress (the pipeline head is unlocked);
// later tasks wait pending until the preceding step completes.
func (e *Engine) AddTask(ctx context.Context, jobID, title, description string, actor Actor) (*entity.Task, []Event, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil, validationErr(CodeEmptyPatch, "task title must not be empty")
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

	status := entity.TaskStatusPending
	if len(job.Tasks) == 0 {
		status = entity.TaskStatusInProgress
	}
	task := entity.Task{
		ID:          uuid.New(),
		JobID:       job.ID,
		Position:    len(job.Tasks),
		Title:       title,
		Description: description,
		Status:      status,
		Updates:     []entity.TaskUpdate{},
		Materials:   []entity.MaterialWithdrawal{},
	}
	job.Tasks = append(job.Tasks, task)

	now := e.now()
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "task.created",
		Detail:    title,
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}
	return &job.Tasks[len(job.Tasks)-1], nil, nil
}

// GetJob reads a single job.
func (e *Engine) GetJob(ctx context.Context, jobID string) (*entity.Job, error) {
	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}
	return job, nil
}

// ListJobs reads a snapshot of all jobs.
func (e *Engine) ListJobs(ctx context.Context) ([]entity.Job, error) {
	return e.jobs.List(ctx)
}
