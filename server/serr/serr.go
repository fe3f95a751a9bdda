// Package serr has the errors returned by the simplegrammar server's service
// layer. API endpoints pick a response status by checking them with
// errors.Is.
package serr

import (
	"errors"
	"strings"
)

var (
	ErrBadCredentials = errors.New("username or password is incorrect")
	ErrNotFound       = errors.New("no such resource")
	ErrAlreadyExists  = errors.New("a resource with that name already exists")
	ErrDB             = errors.New("persistence failure")
	ErrBadArgument    = errors.New("invalid argument")
	ErrBodyUnmarshal  = errors.New("malformed request body")
)

// Error is a message along with the errors that caused it. errors.Is reports
// true for an Error and any of its causes.
type Error struct {
	msg    string
	causes []error
}

// New creates an Error. Nil causes are dropped.
func New(msg string, causes ...error) Error {
	e := Error{msg: msg}
	for _, c := range causes {
		if c != nil {
			e.causes = append(e.causes, c)
		}
	}
	return e
}

// WrapDB creates an Error caused by err and by ErrDB.
func WrapDB(msg string, err error) Error {
	return New(msg, err, ErrDB)
}

// Error gives the message followed by the message of the first cause.
func (e Error) Error() string {
	var parts []string
	if e.msg != "" {
		parts = append(parts, e.msg)
	}
	if len(e.causes) > 0 {
		parts = append(parts, e.causes[0].Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap gives the causes, for errors.Is on Go 1.20 and later.
func (e Error) Unwrap() []error {
	return e.causes
}

// Is reports whether target is one of the causes. Go 1.19 does not follow
// multiple causes on its own, so they are checked here.
func (e Error) Is(target error) bool {
	for _, c := range e.causes {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}
