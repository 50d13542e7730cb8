package shared

// DomainError represents a domain-level error
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

// Common domain errors. The ledger cores return these (or per-call
// instances with the same codes) and never log, retry, or swallow them;
// translating them to user-facing responses is the HTTP layer's job.
var (
	ErrNotFound                  = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists             = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput              = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict       = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState              = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientRawGold       = NewDomainError("INSUFFICIENT_RAW_GOLD", "Insufficient raw gold weight available")
	ErrInvalidWorkflowTransition = NewDomainError("INVALID_WORKFLOW_TRANSITION", "Workflow transition not allowed from current status")
	ErrPaymentExceedsOutstanding = NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING", "Payment amount exceeds outstanding balance")
	ErrInsufficientTreasury      = NewDomainError("INSUFFICIENT_TREASURY_BALANCE", "Insufficient treasury balance")
)
