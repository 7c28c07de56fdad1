package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrUnknownState           = errors.New("unknown state")
	ErrTerminalState          = errors.New("job is in a terminal state")
	ErrConcurrentModification = errors.New("job version conflict")
	ErrNotFound               = errors.New("record not found")
	ErrArchiveStatusInvalid   = errors.New("job archive status invalid")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// validation error codes of transition preconditions
const (
	ValidationIllegalEdge         = "ILLEGAL_EDGE"
	ValidationTerminalState       = "TERMINAL_STATE"
	ValidationUnknownState        = "UNKNOWN_STATE"
	ValidationMissingField        = "MISSING_FIELD"
	ValidationIncompleteChecklist = "INCOMPLETE_CHECKLIST"
	ValidationTechnicianRequired  = "TECHNICIAN_REQUIRED"
	ValidationIllegalReopenTarget = "ILLEGAL_REOPEN_TARGET"
)

// ValidationError names the first unmet transition precondition. fail-fast: it
// never aggregates, so callers and tests see a deterministic single cause.
type ValidationError struct {
	Code  string
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "transition validation failed: " + e.Code + " on " + e.Field
	}
	return "transition validation failed: " + e.Code
}

func (e *ValidationError) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "transition." + e.Code,
		Message: e.Error(), Data: e.Field}
}
