package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/tnqbao/gau-workorder-service/entity"
)

const (
	EventJobAssigned     = "job.assigned"
	EventJobAcknowledged = "job.acknowledged"
	EventJobUpdated      = "job.updated"
	EventJobDeleted      = "job.deleted"
	EventJobCompleted    = "job.completed"
	EventTaskAdvanced    = "task.advanced"
	EventTaskRejected    = "task.rejected"
	EventTaskProgress    = "task.progress"
	EventStockWithdrawn  = "material.withdrawn"
)

// Event is a fact emitted by the engine on a successful mutation. Operations
// return the full list; an external dispatcher owns delivery.
type Event struct {
	Kind          string            `json:"kind"`
	RecipientRole entity.UserRole   `json:"recipient_role"`
	RecipientID   string            `json:"recipient_id,omitempty"`
	JobID         string            `json:"related_job_id,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Dispatcher fans a mutation's events out to the sink. Publish failures are
// logged and swallowed so a committed mutation is never reported as failed
// because a notification could not be delivered.
type Dispatcher struct {
	sink   EventSink
	logger *slog.Logger
}

func NewDispatcher(sink EventSink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		if err := d.sink.Publish(ctx, ev); err != nil {
			d.logger.Warn("event publish failed",
				"kind", ev.Kind,
				"recipient_id", ev.RecipientID,
				"job_id", ev.JobID,
				"error", err)
		}
	}
}

// techEvents builds one event per assigned technician.
func techEvents(job *entity.Job, kind string, payload map[string]string, at time.Time) []Event {
	var events []Event
	for _, techID := range job.TechIDs() {
		events = append(events, Event{
			Kind:          kind,
			RecipientRole: entity.UserRoleTech,
			RecipientID:   techID,
			JobID:         job.ID,
			Payload:       payload,
			OccurredAt:    at,
		})
	}
	return events
}
