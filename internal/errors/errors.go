package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for type checking
var (
	ErrNotFound           = errors.New("not found")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidPermutation = errors.New("invalid permutation")
	ErrInvalidInput       = errors.New("invalid input")
)

// NotFoundError indicates a resource doesn't exist.
type NotFoundError struct {
	Resource string // "card", "button"
	ID       string // The identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IndexOutOfRangeError indicates a positional button operation addressed
// an index outside the card's current button list.
type IndexOutOfRangeError struct {
	CardID string
	Index  int
	Len    int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("button index %d out of range for card %s (%d buttons)", e.Index, e.CardID, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// InvalidPermutationError indicates a reorder payload that would add, drop
// or duplicate entries.
type InvalidPermutationError struct {
	Resource string // "cards", "buttons"
	Reason   string
}

func (e *InvalidPermutationError) Error() string {
	return fmt.Sprintf("invalid %s order: %s", e.Resource, e.Reason)
}

func (e *InvalidPermutationError) Unwrap() error {
	return ErrInvalidPermutation
}

// ValidationError indicates invalid user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Helper constructors for common cases

func CardNotFound(id string) error {
	return &NotFoundError{Resource: "card", ID: id}
}

func ButtonNotFound(cardID, buttonID string) error {
	return &NotFoundError{Resource: "button", ID: fmt.Sprintf("%s (on card %s)", buttonID, cardID)}
}

func IndexOutOfRange(cardID string, index, length int) error {
	return &IndexOutOfRangeError{CardID: cardID, Index: index, Len: length}
}

func InvalidPermutation(resource, reason string) error {
	return &InvalidPermutationError{Resource: resource, Reason: reason}
}

func InvalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIndexOutOfRange checks if an error is an index-out-of-range error.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

// IsInvalidPermutation checks if an error is an invalid-permutation error.
func IsInvalidPermutation(err error) bool {
	return errors.Is(err, ErrInvalidPermutation)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
