// Package graphframeerr distinguishes programmer errors (precondition
// violations, fatal) from user/domain errors (typed, recoverable) across the
// store, matching the two error families a caller needs to tell apart.
package graphframeerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fault is a programmer error: a broken precondition such as mutating a
// frozen snapshot, accepting a frame that belongs to another design, or a
// referential-integrity break surviving to accept time. Callers should not
// try to recover from a Fault; it indicates a bug in the caller or the store.
type Fault struct {
	msg   string
	cause error
}

// NewFault builds a Fault from the formatted message. Only the message text
// is kept; no stack trace is recorded.
func NewFault(format string, args ...any) *Fault {
	return &Fault{msg: errors.WithStack(fmt.Errorf(format, args...)).Error()}
}

// WrapFault wraps an existing error as a Fault, preserving its stack if it
// already has one.
func WrapFault(cause error, format string, args ...any) *Fault {
	return &Fault{
		msg:   fmt.Sprintf(format, args...),
		cause: errors.WithStack(cause),
	}
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("graphframe: fault: %s: %s", f.msg, f.cause)
	}
	return fmt.Sprintf("graphframe: fault: %s", f.msg)
}

func (f *Fault) Unwrap() error { return f.cause }

// Cause returns the deepest non-Fault error, or the Fault itself if it wraps
// nothing further.
func Cause(err error) error {
	for {
		err = errors.Cause(err)
		f, ok := err.(*Fault)
		if !ok || f.cause == nil {
			return err
		}
		err = f.cause
	}
}
