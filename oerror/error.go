package oerror

import "fmt"

// Error is the error returned for invalid configuration, unknown input and misuse of ofly's components.
type Error struct {
	Err string
}

// New returns a new Error with the message formatted from the given arguments.
func New(format string, args ...interface{}) *Error {
	if len(args) == 0 {
		return &Error{Err: format}
	}
	return &Error{Err: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Err
}
