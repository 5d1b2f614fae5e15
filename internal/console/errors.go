package console

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

// ErrorKind classifies a rejected operation.
type ErrorKind string

const (
	// KindInvalidInput is a missing or blank required value.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindInvalidIndex is a missing or out-of-range index.
	KindInvalidIndex ErrorKind = "invalid_index"
	// KindEmpty is a removal or lookup against an empty sequence.
	KindEmpty ErrorKind = "empty_structure"
	// KindUnknownOp is an operation the structure does not offer.
	KindUnknownOp ErrorKind = "unknown_operation"
	// KindBusy is a request made while an animation is pending.
	KindBusy ErrorKind = "busy"
	// KindFull is an insertion into a visualizer at capacity.
	KindFull ErrorKind = "full"
)

// OpError is the notification raised for a rejected operation. The
// sequence is never changed when an OpError is returned.
type OpError struct {
	Kind        ErrorKind
	Title       string
	Description string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Description)
}

// Unwrap maps the kind onto an errdefs class so callers can branch with
// errdefs.IsInvalidArgument and friends.
func (e *OpError) Unwrap() error {
	switch e.Kind {
	case KindInvalidInput:
		return errdefs.ErrInvalidArgument
	case KindInvalidIndex:
		return errdefs.ErrOutOfRange
	case KindEmpty:
		return errdefs.ErrFailedPrecondition
	case KindUnknownOp:
		return errdefs.ErrNotImplemented
	case KindBusy:
		return errdefs.ErrConflict
	case KindFull:
		return errdefs.ErrResourceExhausted
	default:
		return errdefs.ErrUnknown
	}
}

// AsOpError extracts an *OpError from err.
func AsOpError(err error) (*OpError, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}

func invalidInput(description string) error {
	return &OpError{Kind: KindInvalidInput, Title: "Entrada inválida", Description: description}
}

// NewInvalidInputError reports a missing or malformed user value.
func NewInvalidInputError(description string) error {
	return invalidInput(description)
}

func invalidIndex(max int) error {
	return &OpError{
		Kind:        KindInvalidIndex,
		Title:       "Índice inválido",
		Description: fmt.Sprintf("O índice deve estar entre 0 e %d.", max),
	}
}

func emptyStructure(title, description string) error {
	return &OpError{Kind: KindEmpty, Title: title, Description: description}
}

// NewBusyError reports an operation requested mid-animation.
func NewBusyError() error {
	return &OpError{
		Kind:        KindBusy,
		Title:       "Animação em andamento",
		Description: "Aguarde a operação atual terminar.",
	}
}

// NewFullError reports an insertion into a structure at capacity.
func NewFullError(title, description string) error {
	return &OpError{Kind: KindFull, Title: title, Description: description}
}
