package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-workorder-service/entity"
)

func TestCreateJob_Defaults(t *testing.T) {
	f := newFixture(t)
	job, events, err := f.engine.CreateJob(context.Background(), CreateJobInput{
		Title:     "Install substation cabling",
		JobType:   "installation",
		StartDate: day(15),
		EndDate:   day(20),
	}, f.actor)
	require.NoError(t, err)
	require.Empty(t, events)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, entity.JobStatusNew, job.Status)
	assert.Equal(t, "An Admin", job.AdminCreator)
	assert.Nil(t, job.LeadID)
	assert.Empty(t, job.TechIDs())
	assert.Empty(t, job.Tasks)
	assert.Empty(t, job.EditHistory)
	assert.Empty(t, job.ActivityLog)
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.engine.CreateJob(ctx, CreateJobInput{Title: " ", StartDate: day(1), EndDate: day(2)}, f.actor)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, _, err = f.engine.CreateJob(ctx, CreateJobInput{Title: "Backwards", StartDate: day(9), EndDate: day(2)}, f.actor)
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, CodeInvalidDateRange, engineErr.Code)
}

func TestUpdateJob_NoChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, day(15), day(20))

	same := job.Title
	got, _, err := f.engine.UpdateJob(ctx, job.ID, JobPatch{Title: &same}, "typo fix", f.actor)
	require.Error(t, err)
	assert.True(t, IsNoChange(err))
	require.NotNil(t, got)

	fresh, err := f.engine.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.EditHistory)
}

func TestUpdateJob_RequiresReason(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, day(15), day(20))

	title := "Renamed job"
	_, _, err := f.engine.UpdateJob(context.Background(), job.ID, JobPatch{Title: &title}, "", f.actor)
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, CodeEmptyReason, engineErr.Code)
}

func TestUpdateJob_AppendsSingleHistoryEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, day(15), day(20))

	title := "Renamed job"
	location := "Depot 7"
	newEnd := day(22)
	fresh, events, err := f.engine.UpdateJob(ctx, job.ID, JobPatch{
		Title:    &title,
		Location: &location,
		EndDate:  &newEnd,
	}, "customer moved the deadline", f.actor)
	require.NoError(t, err)
	require.Empty(t, events) // no technicians assigned yet

	assert.Equal(t, "Renamed job", fresh.Title)
	assert.Equal(t, "Depot 7", fresh.Location)
	assert.True(t, fresh.EndDate.Equal(day(22)))

	require.Len(t, fresh.EditHistory, 1)
	entry := fresh.EditHistory[0]
	assert.Equal(t, "An Admin", entry.AdminName)
	assert.Equal(t, "customer moved the deadline", entry.Reason)
	assert.Equal(t, []string{"title", "location", "end_date"}, entry.ChangedFields())

	// A second edit appends a second entry; the first is never rewritten.
	title2 := "Renamed again"
	fresh, _, err = f.engine.UpdateJob(ctx, job.ID, JobPatch{Title: &title2}, "rebranding", f.actor)
	require.NoError(t, err)
	require.Len(t, fresh.EditHistory, 2)
	assert.Equal(t, "customer moved the deadline", fresh.EditHistory[0].Reason)
}

func TestUpdateJob_NotifiesAssignedTechnicians(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techA := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	techB := f.addUser(t, entity.UserRoleTech, "Huy", 0)
	job := f.createJob(t, day(15), day(20))
	_, _, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techA, techB}, f.actor)
	require.NoError(t, err)

	title := "Rescoped job"
	_, events, err := f.engine.UpdateJob(ctx, job.ID, JobPatch{Title: &title}, "scope change", f.actor)
	require.NoError(t, err)
	require.Len(t, events, 2)
	var recipients []string
	for _, ev := range events {
		assert.Equal(t, EventJobUpdated, ev.Kind)
		recipients = append(recipients, ev.RecipientID)
	}
	assert.ElementsMatch(t, []string{techA.String(), techB.String()}, recipients)
}

func TestDeleteJob_RequiresReasonAndNotifiesEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	job := f.createJob(t, day(15), day(20))
	_, _, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)
	_, _, err = f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techID}, f.actor)
	require.NoError(t, err)

	_, err = f.engine.DeleteJob(ctx, job.ID, "", f.actor)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	events, err := f.engine.DeleteJob(ctx, job.ID, "duplicate entry", f.actor)
	require.NoError(t, err)
	require.Len(t, events, 2)
	var recipients []string
	for _, ev := range events {
		assert.Equal(t, EventJobDeleted, ev.Kind)
		assert.Equal(t, "duplicate entry", ev.Payload["reason"])
		recipients = append(recipients, ev.RecipientID)
	}
	assert.ElementsMatch(t, []string{techID.String(), leadID.String()}, recipients)

	_, err = f.engine.GetJob(ctx, job.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	// The per-job mutex is released with the job.
	f.engine.mu.Lock()
	_, held := f.engine.jobMus[job.ID]
	f.engine.mu.Unlock()
	assert.False(t, held)
}

func TestAcknowledgeJob_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t, day(15), day(20))
	lead := Actor{ID: "lead-1", Name: "Lan", Role: entity.UserRoleLead}

	fresh, _, err := f.engine.AcknowledgeJob(ctx, job.ID, lead)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusInProgress, fresh.Status)
	require.Len(t, fresh.ActivityLog, 1)
	assert.Equal(t, "job.acknowledged", fresh.ActivityLog[0].Action)
	assert.Equal(t, "Lan", fresh.ActivityLog[0].ActorName)

	// Acknowledging twice is a conflict, the job only moves forward once.
	_, _, err = f.engine.AcknowledgeJob(ctx, job.ID, lead)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCompleteJob_RequiresClosedPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createAckedJob(t, "Survey site", "Pull cable")

	_, _, err := f.engine.CompleteJob(ctx, job.ID, f.actor)
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, CodePipelineOpen, engineErr.Code)

	_, _, err = f.engine.AdvanceTask(ctx, job.ID, job.Tasks[0].ID, f.actor)
	require.NoError(t, err)
	_, _, err = f.engine.AdvanceTask(ctx, job.ID, job.Tasks[1].ID, f.actor)
	require.NoError(t, err)

	fresh, _, err := f.engine.CompleteJob(ctx, job.ID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusDone, fresh.Status)
}

func TestCompleteJob_OnlyFromInProgress(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, day(15), day(20))

	_, _, err := f.engine.CompleteJob(context.Background(), job.ID, f.actor)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

// The in-memory stores serialize on every round trip, so this doubles as a
// check that nested timestamps survive storage intact.
func TestJobRoundTripPreservesTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createAckedJob(t, "Survey site")

	f.clock.Advance(45 * time.Minute)
	submitted := f.clock.Now()
	_, _, err := f.engine.SubmitTaskProgress(ctx, job.ID, job.Tasks[0].ID, f.actor, "trench dug", "")
	require.NoError(t, err)

	fresh, err := f.engine.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Tasks[0].Updates, 1)
	assert.True(t, fresh.Tasks[0].Updates[0].UpdatedAt.Equal(submitted))
	assert.True(t, fresh.StartDate.Equal(day(15)))
	assert.True(t, fresh.EndDate.Equal(day(20)))
}
