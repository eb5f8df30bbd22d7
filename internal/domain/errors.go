package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrPaymentDeclined     = errors.New("payment declined by gateway")
	ErrUpstreamTimeout     = errors.New("upstream service timed out")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrUpstreamBadResponse = errors.New("upstream service returned an unexpected response")
)

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidIDError reports an identifier that does not match the expected format.
type InvalidIDError struct {
	Resource string
	Value    string
	Hint     string
}

func (e *InvalidIDError) Error() string {
	msg := fmt.Sprintf("invalid %s ID: %q", e.Resource, e.Value)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// InsufficientStockError is returned when an order or adjustment asks for
// more units than a product holds.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewForbidden(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// ErrorDetail describes one rejected field.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a business-rule or schema violation caused by client input.
type ValidationError struct {
	Message string
	Details []ErrorDetail
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewFieldValidation(field, message string) error {
	return &ValidationError{
		Message: message,
		Details: []ErrorDetail{{Field: field, Message: message}},
	}
}
