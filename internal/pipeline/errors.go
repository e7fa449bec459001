package pipeline

import "fmt"

// Category classifies a pipeline failure for the HTTP boundary.
type Category string

const (
	// BadRequest covers malformed or disallowed input; nothing was persisted.
	BadRequest Category = "bad_request"
	// Conflict means the content fingerprint matched an existing record.
	Conflict Category = "conflict"
	// NotFound means no record matched the given identifier.
	NotFound Category = "not_found"
	// Processing means a decode/encode/filter stage failed; any directory
	// tree created for the request has been rolled back.
	Processing Category = "processing"
	// Internal covers everything unexpected. Details are logged, never
	// returned to the caller.
	Internal Category = "internal"
)

// Error is the structured failure a pipeline run surfaces to the handler
// layer. Message is safe to return to clients; Err carries the internal
// cause for logging.
type Error struct {
	Category   Category
	Message    string
	Err        error
	ExistingID string // set for Conflict: the record that owns the fingerprint
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string) *Error {
	return &Error{Category: BadRequest, Message: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Category: Internal, Message: msg, Err: err}
}
