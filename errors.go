package pagedlist

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("pagedlist: invalid argument")

	// ErrIndexOutOfRange is returned by Page.At for an index outside [0, Count).
	ErrIndexOutOfRange = errors.New("pagedlist: index out of range")

	// ErrSourceContract is wrapped in a *SourceError when a Source returns
	// results that break its contract (more items than requested, negative count).
	ErrSourceContract = errors.New("pagedlist: source broke its contract")
)

// ArgumentError reports a pagination parameter that violates a constraint.
// It is always returned before any read against a source is issued.
type ArgumentError struct {
	// Name is the offending parameter, e.g. "pageNumber".
	Name string
	// Value is the rejected value.
	Value int
	// Reason describes the violated constraint, e.g. "must be >= 1".
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("pagedlist: invalid %s %d: %s", e.Name, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArg(name string, value int, reason string) error {
	return &ArgumentError{Name: name, Value: value, Reason: reason}
}

// SourceError wraps a failure of a deferred Source read.
// The underlying error is left untouched and reachable with errors.Is/As.
type SourceError struct {
	// Op is the read that failed: "slice" or "count".
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("pagedlist: source %s failed: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
