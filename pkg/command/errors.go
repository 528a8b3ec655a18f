package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind = errors.New("unknown command")
	ErrMalformed   = errors.New("malformed command")
	ErrNotFound    = errors.New("entity not found")
	ErrDisabled    = errors.New("feature disabled")
	ErrRejected    = errors.New("command rejected")
	ErrDuplicate   = errors.New("entity already exists")
)

// SkipError is returned by a handler that decided not to mutate the world.
// Notice is shown to the player; the batch continues.
type SkipError struct {
	Notice string
	Err    error
}

func (e *SkipError) Error() string {
	switch {
	case e.Err == nil:
		return e.Notice
	case e.Notice == "":
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Notice, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Skip builds a SkipError wrapping cause with a formatted notice.
func Skip(cause error, format string, args ...any) error {
	return &SkipError{Notice: fmt.Sprintf(format, args...), Err: cause}
}

// NotFound is shorthand for the most common skip.
func NotFound(what, name string) error {
	return Skip(ErrNotFound, "No %s named %q was found.", what, name)
}

// Duplicate is a silent skip for creation tags naming an existing entity.
func Duplicate(what, name string) error {
	return &SkipError{Err: fmt.Errorf("%w: %s %q", ErrDuplicate, what, name)}
}
