package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// NotFoundError indicates a referenced entity is absent
type NotFoundError struct {
	*DomainError
	Entity string
	ID     int
}

func NewNotFoundError(entity string, id int) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s not found: %d", entity, id)},
		Entity:      entity,
		ID:          id,
	}
}

// PolicyError indicates the cutoff policy cannot resolve a business day
// (misconfigured holidays or weekend settings)
type PolicyError struct {
	*DomainError
}

func NewPolicyError(message string) *PolicyError {
	return &PolicyError{DomainError: &DomainError{Message: message}}
}

// CapacityExhaustedError indicates a buyer is at or above daily capacity
type CapacityExhaustedError struct {
	*DomainError
	StaffID  int
	Capacity int
}

func NewCapacityExhaustedError(staffID, capacity int) *CapacityExhaustedError {
	return &CapacityExhaustedError{
		DomainError: &DomainError{Message: fmt.Sprintf("staff %d is at capacity (%d)", staffID, capacity)},
		StaffID:     staffID,
		Capacity:    capacity,
	}
}

// NoMappingError indicates an order item whose SKU has no product record.
// The planner treats this as a recoverable, item-local condition.
type NoMappingError struct {
	*DomainError
	SKU string
}

func NewNoMappingError(sku string) *NoMappingError {
	return &NoMappingError{
		DomainError: &DomainError{Message: fmt.Sprintf("no product registered for sku %s", sku)},
		SKU:         sku,
	}
}

// ConflictError indicates a concurrent plan attempt for the same buyer/date
type ConflictError struct {
	*DomainError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{DomainError: &DomainError{Message: message}}
}

// ForbiddenError indicates an execution update by a non-authorized staff member
type ForbiddenError struct {
	*DomainError
	StaffID int
}

func NewForbiddenError(staffID int, message string) *ForbiddenError {
	return &ForbiddenError{
		DomainError: &DomainError{Message: message},
		StaffID:     staffID,
	}
}

// ValidationError indicates an invalid field value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
