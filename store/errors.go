package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIDType matches any *InvalidIDTypeError.
	ErrInvalidIDType = errors.New("invalid identifier type")
)

// NotFoundError is returned when a collection or identifier is absent.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("collection %q item %q not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidIDTypeError is returned by Replace when the request identifier cannot
// take the kind of the stored identifier.
type InvalidIDTypeError struct {
	Collection string
	ID         string
	Kind       Kind
}

func (e *InvalidIDTypeError) Error() string {
	return fmt.Sprintf("collection %q item %q: cannot use as %s identifier", e.Collection, e.ID, e.Kind)
}

func (e *InvalidIDTypeError) Is(target error) bool { return target == ErrInvalidIDType }

// StartupError reports a data file that could not be read or parsed.
type StartupError struct {
	Path string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }
