// Package checkpoint decorates errors with the file and line they passed through.
// A chain of checkpoints reads like a short stack trace while errors.Is and errors.As
// still reach both the checkpoint's own error and the error it wraps.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From records the caller of From on err.
// It returns nil if err is nil.
func From(err error) error {
	if err == nil || passThrough(err) {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap records the caller of Wrap on cause and labels it with kind.
// Both stay reachable through errors.Is:
//  err := checkpoint.Wrap(deviceErr, ErrIO)
//  errors.Is(err, ErrIO)     // true
//  errors.Is(err, deviceErr) // true
// It returns nil if cause is nil, so it can wrap a call result directly.
func Wrap(cause, kind error) error {
	if cause == nil || passThrough(cause) {
		return cause
	}

	return newCheckpoint(cause, kind)
}

// Wrapf is like Wrap but labels cause with a formatted kind.
// The format may use %w to keep a sentinel reachable.
func Wrapf(cause error, format string, args ...interface{}) error {
	if cause == nil || passThrough(cause) {
		return cause
	}

	return newCheckpoint(cause, fmt.Errorf(format, args...))
}

// passThrough reports errors which callers compare with ==.
// See https://github.com/golang/go/issues/39155
func passThrough(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

func newCheckpoint(cause, kind error) *checkpoint {
	// Skip newCheckpoint and the exported helper.
	_, file, line, ok := runtime.Caller(2)

	return &checkpoint{
		kind:  kind,
		cause: cause,
		at:    location(file, line, ok),
	}
}

func location(file string, line int, ok bool) string {
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

type checkpoint struct {
	kind  error
	cause error
	at    string
}

func (c *checkpoint) Error() string {
	var b strings.Builder
	b.WriteString(c.at)
	b.WriteString(": ")
	if c.kind != nil {
		b.WriteString(c.kind.Error())
		b.WriteString(": ")
	}
	b.WriteString(c.cause.Error())
	return b.String()
}

func (c *checkpoint) Unwrap() error {
	return c.cause
}

func (c *checkpoint) Is(target error) bool {
	return c.kind != nil && errors.Is(c.kind, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.kind != nil && errors.As(c.kind, target)
}
