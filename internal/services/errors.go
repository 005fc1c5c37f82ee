package services

import (
	"errors"
	"fmt"
)

// Kind classifies the failures a caller is expected to report to the client.
type Kind int

const (
	// KindValidation is malformed or out-of-range input.
	KindValidation Kind = iota + 1
	// KindNotFound is a referenced category or product that does not exist.
	KindNotFound
	// KindConflict is a duplicate category name.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is an expected failure of a catalog operation. Message is safe to show
// to clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client-facing messages.
const (
	MsgCategoryExists     = "Category name already exists"
	MsgCategoryNotFound   = "Category not found"
	MsgProductNotFound    = "Product not found"
	MsgServerError        = "Server error"
	MsgCategoryDeleted    = "Category deleted"
	MsgProductDeleted     = "Product deleted"
	MsgValidationFallback = "Validation error"
)

func validationError(err error, message string) error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func notFound(err error, message string) error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func conflict(err error, message string) error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
