package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// Actor is the already-authenticated caller identity supplied with every
// mutating call. The engine trusts it; authentication happens upstream.
type Actor struct {
	ID   string
	Name string
	Role entity.UserRole
}

// JobStore is the persistence port for jobs and their nested children.
// Implementations must round-trip all time.Time fields exactly and persist
// child collections in order.
type JobStore interface {
	List(ctx context.Context) ([]entity.Job, error)
	Get(ctx context.Context, id string) (*entity.Job, error)
	Create(ctx context.Context, job *entity.Job) error
	// Update persists the job and all nested children atomically.
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id string) error
}

// StockDecrement is one line of a withdrawal batch handed to the store.
type StockDecrement struct {
	MaterialID uuid.UUID
	Quantity   int
}

// MaterialStore is the persistence port for the shared stock ledger.
type MaterialStore interface {
	List(ctx context.Context) ([]entity.Material, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Material, error)
	// DecrementBatch applies every decrement or none. It must re-check
	// stock under its own transaction and fail the whole batch when any
	// line would go negative. A negative quantity restores stock.
	DecrementBatch(ctx context.Context, lines []StockDecrement) error
}

// UserStore is the lookup port for leads and technicians.
type UserStore interface {
	ListByRole(ctx context.Context, role entity.UserRole) ([]entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// IncrementJobs bumps the rolling workload counter used for
	// availability ordering.
	IncrementJobs(ctx context.Context, id uuid.UUID, delta int) error
}

// EventSink receives domain events from the dispatcher. Delivery is
// best-effort; sink failures never roll back the mutation that produced the
// event.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}
