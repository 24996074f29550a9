package errors

import (
	"errors"
	"fmt"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainAuthorizationError indicates insufficient permissions
	DomainAuthorizationError DomainErrorType = "AUTHORIZATION_ERROR"

	// DomainAuthenticationError indicates authentication failure
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"

	// DomainLimitError indicates a per-user quota was exhausted
	DomainLimitError DomainErrorType = "LIMIT_ERROR"

	// DomainTimeoutError indicates operation timeout
	DomainTimeoutError DomainErrorType = "TIMEOUT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// clone copies the error so With* never mutates the package-level
// sentinels, which are shared across requests
func (e *DomainError) clone() *DomainError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	dup := *e
	dup.Details = details
	return &dup
}

// WithCause adds a cause to a copy of the error
func (e *DomainError) WithCause(cause error) *DomainError {
	dup := e.clone()
	dup.Cause = cause
	return dup
}

// WithDetail adds a detail to a copy of the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	dup := e.clone()
	dup.Details[key] = value
	return dup
}

// WithDetails adds multiple details to a copy of the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	dup := e.clone()
	for k, v := range details {
		dup.Details[k] = v
	}
	return dup
}

// WithRetryable sets retryability on a copy of the error
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	dup := e.clone()
	dup.Retryable = retryable
	return dup
}

// WithStatusCode sets a custom HTTP status code on a copy of the error
func (e *DomainError) WithStatusCode(code int) *DomainError {
	dup := e.clone()
	dup.StatusCode = code
	return dup
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// IsDomainErrorWithCode reports whether err (or anything it wraps) is a
// domain error carrying the given code
func IsDomainErrorWithCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400 // Bad Request
	case DomainBusinessRuleError:
		return 422 // Unprocessable Entity
	case DomainNotFoundError:
		return 404 // Not Found
	case DomainConflictError:
		return 409 // Conflict
	case DomainAuthenticationError:
		return 401 // Unauthorized
	case DomainAuthorizationError:
		return 403 // Forbidden
	case DomainLimitError:
		return 429 // Too Many Requests
	case DomainTimeoutError:
		return 504 // Gateway Timeout
	case DomainInfrastructureError:
		return 500 // Internal Server Error
	default:
		return 500 // Internal Server Error
	}
}

// Common domain errors - these are pre-defined errors that can be reused

var (
	// Card errors
	ErrCardNotFound = NewDomainError(
		DomainNotFoundError,
		"CARD_NOT_FOUND",
		"The requested card does not exist",
	)

	ErrCardTextRequired = NewDomainError(
		DomainValidationError,
		"CARD_TEXT_REQUIRED",
		"Card text is required",
	)

	ErrCardTextTooLong = NewDomainError(
		DomainValidationError,
		"CARD_TEXT_TOO_LONG",
		"Card text exceeds maximum length",
	).WithDetail("max_length", 1000)

	ErrInvalidCardType = NewDomainError(
		DomainValidationError,
		"INVALID_CARD_TYPE",
		"Card type must be feedback or action",
	)

	ErrInvalidColumn = NewDomainError(
		DomainValidationError,
		"INVALID_COLUMN",
		"Target column does not exist on this board",
	)

	ErrNotCardCreator = NewDomainError(
		DomainAuthorizationError,
		"NOT_CARD_CREATOR",
		"Only the card creator may perform this action",
	)

	// Board errors
	ErrBoardNotFound = NewDomainError(
		DomainNotFoundError,
		"BOARD_NOT_FOUND",
		"The requested board does not exist",
	)

	ErrBoardClosed = NewDomainError(
		DomainConflictError,
		"BOARD_CLOSED",
		"The board is closed to modifications",
	)

	ErrNotBoardAdmin = NewDomainError(
		DomainAuthorizationError,
		"NOT_BOARD_ADMIN",
		"Board administrator privileges are required",
	)

	// Relationship errors
	ErrSelfLink = NewDomainError(
		DomainBusinessRuleError,
		"SELF_LINK",
		"A card cannot be linked to itself",
	)

	ErrChildHasParent = NewDomainError(
		DomainBusinessRuleError,
		"CHILD_HAS_PARENT",
		"The card is already grouped under another card",
	)

	ErrParentIsChild = NewDomainError(
		DomainBusinessRuleError,
		"PARENT_IS_CHILD",
		"A grouped card cannot become a parent",
	)

	ErrCircularLink = NewDomainError(
		DomainBusinessRuleError,
		"CIRCULAR_LINK",
		"The link would create a circular relationship",
	)

	ErrLinkNotFound = NewDomainError(
		DomainNotFoundError,
		"LINK_NOT_FOUND",
		"The link does not exist",
	)

	// Reaction errors
	ErrReactionNotFound = NewDomainError(
		DomainNotFoundError,
		"REACTION_NOT_FOUND",
		"No reaction from this user exists on the card",
	)

	// Quota errors
	ErrCardLimitReached = NewDomainError(
		DomainLimitError,
		"CARD_LIMIT_REACHED",
		"The per-user card limit for this board has been reached",
	)

	ErrReactionLimitReached = NewDomainError(
		DomainLimitError,
		"REACTION_LIMIT_REACHED",
		"The per-user reaction limit for this board has been reached",
	)

	// Transaction errors
	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	).WithRetryable(true)

	ErrLockContended = NewDomainError(
		DomainConflictError,
		"LOCK_CONTENDED",
		"Another operation holds the lock on this resource",
	).WithRetryable(true)

	// Infrastructure errors
	ErrDatabaseConnection = NewDomainError(
		DomainInfrastructureError,
		"DATABASE_CONNECTION_ERROR",
		"Failed to connect to database",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// ValidationErrors aggregates multiple validation errors
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}

		if _, exists := result[field]; !exists {
			result[field] = make([]string, 0)
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

