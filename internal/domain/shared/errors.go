package shared

// DomainError represents a domain-level error. Typed errors in the domain
// packages unwrap to one of the sentinels below, so callers can test the class
// with errors.Is and the HTTP layer can map the code to a status.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	// ErrLockTimeout is transient: the row lock could not be acquired in time.
	ErrLockTimeout = NewDomainError("LOCK_TIMEOUT", "Timed out waiting for a stock row lock")
)

// IllegalStateTransitionError reports an operation requested in a state that forbids it
type IllegalStateTransitionError struct {
	Aggregate string
	From      string
	Action    string
}

func (e *IllegalStateTransitionError) Error() string {
	return "cannot " + e.Action + " " + e.Aggregate + " in status " + e.From
}

func (e *IllegalStateTransitionError) Unwrap() error {
	return ErrInvalidState
}

// NewIllegalStateTransitionError builds an IllegalStateTransitionError
func NewIllegalStateTransitionError(aggregate, from, action string) *IllegalStateTransitionError {
	return &IllegalStateTransitionError{Aggregate: aggregate, From: from, Action: action}
}

// DuplicateLineError reports a uniqueness violation on a line or variant
type DuplicateLineError struct {
	What string
	Key  string
}

func (e *DuplicateLineError) Error() string {
	return e.What + " already exists: " + e.Key
}

func (e *DuplicateLineError) Unwrap() error {
	return ErrAlreadyExists
}
