package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
)

// WithdrawalRequest is one requested line of a stock withdrawal.
type WithdrawalRequest struct {
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   int       `json:"quantity"`
}

// WithdrawMaterials draws stock from the shared ledger for a task, two-phase
// and all-or-nothing: every line is validated against current stock first,
// and any failure returns the complete list of failing lines with no
// decrement applied. On success each line's stock drops by exactly its
// quantity in one store transaction and a withdrawal record is attached to
// the task.
func (e *Engine) WithdrawMaterials(ctx context.Context, jobID string, taskID uuid.UUID, requests []WithdrawalRequest, actor Actor) (*entity.Job, []Event, error) {
	if len(requests) == 0 {
		return nil, nil, validationErr(CodeEmptyPatch, "at least one withdrawal line is required")
	}

	unlockJob := e.lockJob(jobID)
	defer unlockJob()

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

	e.ledger.Lock()
	defer e.ledger.Unlock()

	// Phase one: validate every line, collecting all failures. Lines naming
	// the same material count against its stock cumulatively.
	var items []ItemError
	resolved := make([]*entity.Material, len(requests))
	totals := make(map[uuid.UUID]int)
	for i, req := range requests {
		if req.Quantity < 1 {
			items = append(items, ItemError{
				MaterialID: req.MaterialID,
				Code:       CodeInvalidQuantity,
				Message:    "quantity must be at least 1",
				Requested:  req.Quantity,
			})
			continue
		}
		mat, err := e.materials.Get(ctx, req.MaterialID)
		if err != nil {
			return nil, nil, err
		}
		if mat == nil {
			items = append(items, ItemError{
				MaterialID: req.MaterialID,
				Code:       CodeMaterialNotFound,
				Message:    "material does not exist",
				Requested:  req.Quantity,
			})
			continue
		}
		totals[req.MaterialID] += req.Quantity
		if totals[req.MaterialID] > mat.Stock {
			items = append(items, ItemError{
				MaterialID: req.MaterialID,
				Code:       CodeInsufficientStock,
				Message:    "requested quantity exceeds stock of " + mat.Name,
				Requested:  totals[req.MaterialID],
				Available:  mat.Stock,
			})
			continue
		}
		resolved[i] = mat
	}
	if len(items) > 0 {
		return nil, nil, &Error{
			Kind:    KindConflict,
			Code:    CodeInsufficientStock,
			Message: "withdrawal rejected, no stock was changed",
			Items:   items,
		}
	}

	// Phase two: decrement everything in one store transaction.
	lines := make([]StockDecrement, len(requests))
	for i, req := range requests {
		lines[i] = StockDecrement{MaterialID: req.MaterialID, Quantity: req.Quantity}
	}
	if err := e.materials.DecrementBatch(ctx, lines); err != nil {
		return nil, nil, err
	}

	now := e.now()
	for i, req := range requests {
		task.Materials = append(task.Materials, entity.MaterialWithdrawal{
			ID:           uuid.New(),
			TaskID:       task.ID,
			MaterialID:   req.MaterialID,
			MaterialName: resolved[i].Name,
			Unit:         resolved[i].Unit,
			Quantity:     req.Quantity,
			WithdrawnBy:  actor.Name,
			WithdrawnAt:  now,
		})
	}
	job.ActivityLog = append(job.ActivityLog, entity.ActivityEntry{
		ID:        uuid.New(),
		JobID:     job.ID,
		Action:    "material.withdrawn",
		Detail:    task.Title,
		ActorName: actor.Name,
		LoggedAt:  now,
	})

	if err := e.jobs.Update(ctx, job); err != nil {
		// The withdrawal records were never persisted; put the stock back.
		restore := make([]StockDecrement, len(lines))
		for i, line := range lines {
			restore[i] = StockDecrement{MaterialID: line.MaterialID, Quantity: -line.Quantity}
		}
		_ = e.materials.DecrementBatch(ctx, restore)
		return nil, nil, err
	}

	var events []Event
	if job.LeadID != nil {
		events = append(events, Event{
			Kind:          EventStockWithdrawn,
			RecipientRole: entity.UserRoleLead,
			RecipientID:   *job.LeadID,
			JobID:         job.ID,
			Payload:       map[string]string{"task": task.Title, "by": actor.Name},
			OccurredAt:    now,
		})
	}
	return job, events, nil
}

// ListMaterials reads the full material catalog.
func (e *Engine) ListMaterials(ctx context.Context) ([]entity.Material, error) {
	return e.materials.List(ctx)
}

// GetMaterial reads a single catalog entry.
func (e *Engine) GetMaterial(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	mat, err := e.materials.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, notFoundErr(CodeMaterialNotFound, "material %s not found", id)
	}
	return mat, nil
}
