package workflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// rangesOverlap reports whether [aStart,aEnd] and [bStart,bEnd] intersect.
// Both ends are inclusive: a single-day job still collides with same-day
// jobs.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// busyIn reports whether the user is bound (as lead or technician) to any
// job overlapping the range, skipping excludeJobID. Jobs already done no
// longer block a range.
func busyIn(userID string, start, end time.Time, jobs []entity.Job, excludeJobID string) bool {
	for i := range jobs {
		job := &jobs[i]
		if job.ID == excludeJobID {
			continue
		}
		if job.Status == entity.JobStatusDone {
			continue
		}
		if !rangesOverlap(start, end, job.StartDate, job.EndDate) {
			continue
		}
		if job.LeadID != nil && *job.LeadID == userID {
			return true
		}
		if job.HasTech(userID) {
			return true
		}
	}
	return false
}

// ResolveAvailable filters the candidate pool down to users free for the
// range and orders them ascending by workload counter, ties broken by id.
// Pure function of its inputs; callers must re-resolve after any job
// mutation.
func ResolveAvailable(candidates []entity.User, start, end time.Time, jobs []entity.Job, excludeJobID string) []entity.User {
	available := make([]entity.User, 0, len(candidates))
	for _, c := range candidates {
		if !busyIn(c.ID.String(), start, end, jobs, excludeJobID) {
			available = append(available, c)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].JobsThisMonth != available[j].JobsThisMonth {
			return available[i].JobsThisMonth < available[j].JobsThisMonth
		}
		return strings.Compare(available[i].ID.String(), available[j].ID.String()) < 0
	})
	return available
}

// AvailableUsers resolves the free leads or technicians for a date range over
// a snapshot of all jobs. Availability is advisory: assignment re-validates
// at bind time.
func (e *Engine) AvailableUsers(ctx context.Context, role entity.UserRole, start, end time.Time, excludeJobID string) ([]entity.User, error) {
	if start.After(end) {
		return nil, validationErr(CodeInvalidDateRange, "start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	candidates, err := e.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	jobs, err := e.jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	return ResolveAvailable(candidates, start, end, jobs, excludeJobID), nil
}

// AssignLead binds a lead to the job, re-validating availability at
// assignment time to close the resolve-then-assign race.
func (e *Engine) AssignLead(ctx context.Context, jobID string, leadID uuid.UUID, actor Actor) (*entity.Job, []Event, error) {
	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}

	lead, err := e.users.Get(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}
	if lead == nil {
		return nil, nil, notFoundErr(CodeUserNotFound, "user %s not found", leadID)
	}
	if lead.Role != entity.UserRoleLead {
		return nil, nil, validationErr(CodeEmptyPatch, "user %s is not a lead", leadID)
	}

	jobs, err := e.jobs.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if busyIn(leadID.String(), job.StartDate, job.EndDate, jobs, job.ID) {
		return nil, nil, conflictErr(CodeCandidateBusy, "lead %s is busy between %s and %s",
			lead.Name, job.StartDate.Format("2006-01-02"), job.EndDate.Format("2006-01-02"))
	}

	now := e.now()
	idStr := leadID.String()
	job.LeadID = &idStr
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "lead.assigned",
		Detail:    lead.Name,
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}
	// The assignment is already persisted; the workload counter is an
	// ordering heuristic, a failed bump is not surfaced.
	_ = e.users.IncrementJobs(ctx, leadID, 1)

	events := []Event{{
		Kind:          EventJobAssigned,
		RecipientRole: entity.UserRoleLead,
		RecipientID:   idStr,
		JobID:         job.ID,
		Payload:       map[string]string{"title": job.Title},
		OccurredAt:    now,
	}}
	return job, events, nil
}

// AssignTechnicians replaces the job's technician set. The incoming list is
// treated as a set; duplicate ids collapse to one membership. Every
// technician new to the job is availability-checked at bind time; members
// already on the job are kept without a re-check.
func (e *Engine) AssignTechnicians(ctx context.Context, jobID string, techIDs []uuid.UUID, actor Actor) (*entity.Job, []Event, error) {
	unlock := e.lockJob(jobID)
	defer unlock()

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, notFoundErr(CodeJobNotFound, "job %s not found", jobID)
	}

	jobs, err := e.jobs.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	current := make(map[string]bool)
	for _, id := range job.TechIDs() {
		current[id] = true
	}

	var added []entity.User
	seen := make(map[string]bool)
	ids := make([]string, 0, len(techIDs))
	for _, techID := range techIDs {
		idStr := techID.String()
		if seen[idStr] {
			continue
		}
		seen[idStr] = true
		ids = append(ids, idStr)
		if current[idStr] {
			continue
		}
		tech, err := e.users.Get(ctx, techID)
		if err != nil {
			return nil, nil, err
		}
		if tech == nil {
			return nil, nil, notFoundErr(CodeUserNotFound, "user %s not found", techID)
		}
		if tech.Role != entity.UserRoleTech {
			return nil, nil, validationErr(CodeEmptyPatch, "user %s is not a technician", techID)
		}
		if busyIn(idStr, job.StartDate, job.EndDate, jobs, job.ID) {
			return nil, nil, conflictErr(CodeCandidateBusy, "technician %s is busy between %s and %s",
				tech.Name, job.StartDate.Format("2006-01-02"), job.EndDate.Format("2006-01-02"))
		}
		added = append(added, *tech)
	}

	if err := job.SetTechIDs(ids); err != nil {
		return nil, nil, err
	}

	now := e.now()
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "technicians.assigned",
		Detail:    strings.Join(ids, ","),
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, nil, err
	}

	var events []Event
	for _, tech := range added {
		// Same policy as AssignLead: the assignment is already persisted,
		// a failed counter bump is not surfaced.
		_ = e.users.IncrementJobs(ctx, tech.ID, 1)
		events = append(events, Event{
			Kind:          EventJobAssigned,
			RecipientRole: entity.UserRoleTech,
			RecipientID:   tech.ID.String(),
			JobID:         job.ID,
			Payload:       map[string]string{"title": job.Title},
			OccurredAt:    now,
		})
	}
	return job, events, nil
}
