package richtext

import (
	"errors"

	"github.com/dshills/richtext/internal/engine/textrun"
)

// Errors returned by richtext operations.
var (
	// ErrOffsetOutOfRange indicates an edit or query outside a fragment's
	// bounds. It is the same value as textrun.ErrOffsetOutOfRange.
	ErrOffsetOutOfRange = textrun.ErrOffsetOutOfRange

	// ErrNotFound indicates a metadata lookup against an empty fragment.
	ErrNotFound = textrun.ErrNotFound

	// ErrDestroyed indicates an operation on a fragment that is being or has
	// been destroyed.
	ErrDestroyed = errors.New("fragment destroyed")

	// ErrDetached indicates a cursor whose fragment was destroyed.
	ErrDetached = errors.New("cursor location detached")

	// ErrClosed indicates an operation on a closed cursor owner or text.
	ErrClosed = errors.New("closed")

	// ErrGuardReleased indicates use of a released read guard.
	ErrGuardReleased = errors.New("guard released")

	// ErrUnknownFragment indicates a fragment that does not belong to the text.
	ErrUnknownFragment = errors.New("fragment does not belong to this text")

	// ErrLastFragment indicates an attempt to remove the only fragment.
	ErrLastFragment = errors.New("cannot remove the last fragment")

	// ErrNoSuccessor indicates a merge of the final fragment.
	ErrNoSuccessor = errors.New("fragment has no successor")
)
