package court

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSelection wraps any failure while choosing state, district or
	// complex.
	ErrSelection = errors.New("court selection failed")
	// ErrNavigationTimeout is returned when a page load outlasts
	// PageLoadTimeout.
	ErrNavigationTimeout = errors.New("page load timed out")
	// ErrElementNotFound is returned when an element is not visible or
	// clickable within WaitTimeout.
	ErrElementNotFound = errors.New("element not ready")
	// ErrOptionNotFound is returned when a dropdown never offers the wanted
	// label.
	ErrOptionNotFound = errors.New("option not found")
)

// StepError records which workflow step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// selectionError marks err as a selection failure for step while keeping the
// underlying cause reachable through errors.Is.
func selectionError(step string, err error) error {
	return &StepError{Step: step, Err: fmt.Errorf("%w: %w", ErrSelection, err)}
}

// Kind names the class of err for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSelection):
		return "SelectionFailure"
	case errors.Is(err, ErrNavigationTimeout):
		return "NavigationTimeout"
	case errors.Is(err, ErrElementNotFound), errors.Is(err, ErrOptionNotFound):
		return "ElementNotFound"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return "UnclassifiedException"
	}
}
