package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeJobStatus(t *testing.T) {
	assert.Equal(t, JobStatusDone, NormalizeJobStatus("completed"))
	assert.Equal(t, JobStatusDone, NormalizeJobStatus("finished"))
	assert.Equal(t, JobStatusInProgress, NormalizeJobStatus("in_progress"))
	assert.Equal(t, JobStatusNew, NormalizeJobStatus("new"))
	// unknown values pass through so validation can surface them
	assert.Equal(t, JobStatus("bogus"), NormalizeJobStatus("bogus"))
}

func TestNormalizeTaskStatus(t *testing.T) {
	assert.Equal(t, TaskStatusCompleted, NormalizeTaskStatus("done"))
	assert.Equal(t, TaskStatusInProgress, NormalizeTaskStatus("inprogress"))
	assert.Equal(t, TaskStatusPending, NormalizeTaskStatus("pending"))
}
