package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind categorizes engine errors so the transport layer can map them to
// status codes without inspecting messages.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindNoChange   Kind = "no_change"
)

const (
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeEmptyReason       = "EMPTY_REASON"
	CodeEmptyPatch        = "EMPTY_PATCH"
	CodeJobNotFound       = "JOB_NOT_FOUND"
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeMaterialNotFound  = "MATERIAL_NOT_FOUND"
	CodeStepOutOfOrder    = "STEP_OUT_OF_ORDER"
	CodeCandidateBusy     = "CANDIDATE_BUSY"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeNotAcknowledged   = "NOT_ACKNOWLEDGED"
	CodeWrongStatus       = "WRONG_STATUS"
	CodeTaskNotActive     = "TASK_NOT_ACTIVE"
	CodePipelineOpen      = "PIPELINE_OPEN"
	CodeNoChange          = "NO_CHANGE"
)

// Error is the engine's returned outcome for any failed operation. Batch
// failures (material withdrawals) carry the complete per-line list in Items.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Items   []ItemError
}

func (e *Error) Error() string {
	if len(e.Items) > 0 {
		return fmt.Sprintf("%s: %s (%d failing lines)", e.Code, e.Message, len(e.Items))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ItemError describes one failing line of a withdrawal batch.
type ItemError struct {
	MaterialID uuid.UUID `json:"material_id"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Requested  int       `json:"requested"`
	Available  int       `json:"available"`
}

// ErrNoChange signals an update whose patch matched current state exactly.
// Not a failure; the caller surfaces "nothing to do" and no history entry is
// written.
var ErrNoChange = &Error{Kind: KindNoChange, Code: CodeNoChange, Message: "patch matches current state"}

func validationErr(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the engine error kind, or "" for foreign errors
// (storage failures surface as-is).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNoChange(err error) bool { return KindOf(err) == KindNoChange }
