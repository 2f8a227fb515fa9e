package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input). Fields lists
// every offending field so the caller can surface per-field messages.
type ErrValidation struct {
	Fields  map[string]string
	Message string
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %v", e.Fields)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewFieldError builds a single-field validation error.
func NewFieldError(field, message string) *ErrValidation {
	return &ErrValidation{Fields: map[string]string{field: message}}
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a resource already exists (e.g. duplicate email).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrInsufficientStock indicates a stock movement would go negative.
type ErrInsufficientStock struct {
	ProductID string
	Available int
	Requested int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d requested=%d",
		e.ProductID, e.Available, e.Requested)
}

// ErrOrderClosed indicates a mutation on an order that is no longer open.
type ErrOrderClosed struct {
	OrderID string
	Status  string
}

func (e *ErrOrderClosed) Error() string {
	return fmt.Sprintf("order %s is %s and cannot be modified", e.OrderID, e.Status)
}
