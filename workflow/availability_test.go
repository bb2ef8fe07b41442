package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-workorder-service/entity"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint before", day(1), day(3), day(4), day(6), false},
		{"disjoint after", day(7), day(9), day(4), day(6), false},
		{"shared end day", day(1), day(4), day(4), day(6), true},
		{"shared start day", day(6), day(9), day(4), day(6), true},
		{"contained", day(5), day(5), day(4), day(6), true},
		{"containing", day(1), day(9), day(4), day(6), true},
		{"identical single day", day(4), day(4), day(4), day(4), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rangesOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
		})
	}
}

func TestAvailableUsers_OverlapBlocksLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	freeID := f.addUser(t, entity.UserRoleLead, "Minh", 0)

	job := f.createJob(t, day(1), day(5))
	_, _, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)

	got, err := f.engine.AvailableUsers(ctx, entity.UserRoleLead, day(4), day(10), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, freeID, got[0].ID)

	// Outside the assigned range both leads are free again.
	got, err = f.engine.AvailableUsers(ctx, entity.UserRoleLead, day(6), day(10), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAvailableUsers_ExcludeJobKeepsOwnAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	job := f.createJob(t, day(1), day(5))
	_, _, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)

	// When rescheduling the same job its own lead must not count as busy.
	got, err := f.engine.AvailableUsers(ctx, entity.UserRoleLead, day(2), day(8), job.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leadID, got[0].ID)
}

func TestAvailableUsers_DoneJobsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	job := f.createJob(t, day(1), day(5))
	_, _, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)
	_, _, err = f.engine.AcknowledgeJob(ctx, job.ID, f.actor)
	require.NoError(t, err)
	_, _, err = f.engine.CompleteJob(ctx, job.ID, f.actor)
	require.NoError(t, err)

	got, err := f.engine.AvailableUsers(ctx, entity.UserRoleLead, day(2), day(4), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leadID, got[0].ID)
}

func TestAvailableUsers_TechAssignmentBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	job := f.createJob(t, day(3), day(7))
	_, _, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techID}, f.actor)
	require.NoError(t, err)

	got, err := f.engine.AvailableUsers(ctx, entity.UserRoleTech, day(7), day(9), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAvailableUsers_InvalidRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.AvailableUsers(context.Background(), entity.UserRoleLead, day(9), day(2), "")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestResolveAvailable_Ordering(t *testing.T) {
	busy := entity.User{ID: uuid.New(), Name: "Busy", Role: entity.UserRoleTech, JobsThisMonth: 9}
	light := entity.User{ID: uuid.New(), Name: "Light", Role: entity.UserRoleTech, JobsThisMonth: 1}
	tieA := entity.User{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Name: "TieA", Role: entity.UserRoleTech, JobsThisMonth: 3}
	tieB := entity.User{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), Name: "TieB", Role: entity.UserRoleTech, JobsThisMonth: 3}

	got := ResolveAvailable([]entity.User{busy, tieB, light, tieA}, day(1), day(2), nil, "")
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Light", "TieA", "TieB", "Busy"},
		[]string{got[0].Name, got[1].Name, got[2].Name, got[3].Name})
}

func TestAssignLead_BusyConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	first := f.createJob(t, day(1), day(5))
	_, _, err := f.engine.AssignLead(ctx, first.ID, leadID, f.actor)
	require.NoError(t, err)

	second := f.createJob(t, day(4), day(8))
	_, _, err = f.engine.AssignLead(ctx, second.ID, leadID, f.actor)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, CodeCandidateBusy, engineErr.Code)

	// The conflicting assignment must leave the job untouched.
	fresh, err := f.engine.GetJob(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.LeadID)
}

func TestAssignLead_IncrementsWorkloadAndEmitsEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 2)
	job := f.createJob(t, day(1), day(5))

	updated, events, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)
	require.NotNil(t, updated.LeadID)
	assert.Equal(t, leadID.String(), *updated.LeadID)

	require.Len(t, events, 1)
	assert.Equal(t, EventJobAssigned, events[0].Kind)
	assert.Equal(t, leadID.String(), events[0].RecipientID)
	assert.Equal(t, entity.UserRoleLead, events[0].RecipientRole)

	lead, err := f.users.Get(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, 3, lead.JobsThisMonth)
}

func TestAssignLead_RejectsNonLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	job := f.createJob(t, day(1), day(5))

	_, _, err := f.engine.AssignLead(ctx, job.ID, techID, f.actor)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAssignTechnicians_ReplacesSetAndChecksNewOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keptID := f.addUser(t, entity.UserRoleTech, "Kept", 0)
	newID := f.addUser(t, entity.UserRoleTech, "Added", 0)
	droppedID := f.addUser(t, entity.UserRoleTech, "Dropped", 0)

	job := f.createJob(t, day(1), day(5))
	_, _, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{keptID, droppedID}, f.actor)
	require.NoError(t, err)

	updated, events, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{keptID, newID}, f.actor)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{keptID.String(), newID.String()}, updated.TechIDs())

	// Only the newly added technician gets an assignment event and a
	// workload bump; the kept member was already counted.
	require.Len(t, events, 1)
	assert.Equal(t, newID.String(), events[0].RecipientID)

	kept, err := f.users.Get(ctx, keptID)
	require.NoError(t, err)
	assert.Equal(t, 1, kept.JobsThisMonth)
	added, err := f.users.Get(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, 1, added.JobsThisMonth)
}

func TestAssignTechnicians_DuplicateIDsCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	job := f.createJob(t, day(1), day(5))

	updated, events, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techID, techID}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, []string{techID.String()}, updated.TechIDs())
	require.Len(t, events, 1)

	tech, err := f.users.Get(ctx, techID)
	require.NoError(t, err)
	assert.Equal(t, 1, tech.JobsThisMonth)
}

func TestAssignLead_CounterFailureDoesNotFailAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadID := f.addUser(t, entity.UserRoleLead, "Lan", 0)
	job := f.createJob(t, day(1), day(5))
	f.users.incErr = errors.New("counter unavailable")

	updated, events, err := f.engine.AssignLead(ctx, job.ID, leadID, f.actor)
	require.NoError(t, err)
	require.NotNil(t, updated.LeadID)
	assert.Equal(t, leadID.String(), *updated.LeadID)
	require.Len(t, events, 1)
}

func TestAssignTechnicians_CounterFailureDoesNotFailAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	job := f.createJob(t, day(1), day(5))
	f.users.incErr = errors.New("counter unavailable")

	updated, events, err := f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techID}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, []string{techID.String()}, updated.TechIDs())
	require.Len(t, events, 1)
}

func TestAssignTechnicians_BusyNewMemberConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	techID := f.addUser(t, entity.UserRoleTech, "Tuan", 0)
	other := f.createJob(t, day(2), day(6))
	_, _, err := f.engine.AssignTechnicians(ctx, other.ID, []uuid.UUID{techID}, f.actor)
	require.NoError(t, err)

	job := f.createJob(t, day(5), day(9))
	_, _, err = f.engine.AssignTechnicians(ctx, job.ID, []uuid.UUID{techID}, f.actor)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}
