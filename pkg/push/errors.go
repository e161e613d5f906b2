package push

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned when a disposed subscription is asked to reopen.
var ErrDisposed = errors.New("push: subscription disposed")

// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor ws(s).
var ErrUnsupportedScheme = errors.New("push: unsupported url scheme")

// DecodeError describes a dropped frame.
type DecodeError struct {
	Kind string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("push: drop %q frame: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
