package errors

import "fmt"

// ErrorCode represents a Loam error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrDocLoadFailed  ErrorCode = "DOC_LOAD_FAILED" // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// LoamError represents a structured error with code, status, and details.
type LoamError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LoamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LoamError {
	return &LoamError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session or document cannot be found.
func NewNotFound(identifier string) *LoamError {
	return &LoamError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDocLoadFailed creates a 422 error for a document that could not be read.
// A load failure excludes that document from the batch; it never aborts the run.
func NewDocLoadFailed(path string, err error) *LoamError {
	msg := "failed to load document"
	if err != nil {
		msg = err.Error()
	}
	return &LoamError{
		Code:    ErrDocLoadFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error for unexpected internal errors. op names
// the operation that failed.
func NewInternal(op string, err error) *LoamError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %s", op, err.Error())
	}
	return &LoamError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a LoamError with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*LoamError); ok {
		return lErr.Code == code
	}
	return false
}
