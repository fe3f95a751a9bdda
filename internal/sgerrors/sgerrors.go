// Package sgerrors contains errors that carry a message meant for the person
// at the console in addition to the usual technical message.
package sgerrors

import (
	"errors"
	"fmt"
)

// consoleError is an error caused by something the user asked for. Either the
// input could not be understood or it asks for something that cannot be done.
//
// consoleError includes a human-readable message to show to an operator as
// well as a typical more technical "error message" style message.
type consoleError struct {
	msg   string
	human string
	wrap  error
}

func (e *consoleError) Error() string {
	return e.msg
}

// ConsoleMessage shows the message that should be displayed on the console to
// describe the error.
func (e *consoleError) ConsoleMessage() string {
	return e.human
}

// Unwrap gives the error that the consoleError wraps, if it wraps one.
func (e *consoleError) Unwrap() error {
	return e.wrap
}

// Console returns a new error that has both the message to show the user and
// the technical description of the error.
func Console(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got ConsoleError(%q)", human)
	}
	return &consoleError{
		msg:   technical,
		human: human,
	}
}

// Consolef returns a new error that has a message to show to the user and an
// automatically generated Error() description. The arguments given are the
// format string and the arguments to the format string.
func Consolef(humanFormat string, a ...interface{}) error {
	return Console(fmt.Sprintf(humanFormat, a...), "")
}

// WrapConsole returns a new error that has both the message to show the user
// and the technical description of the error, and that wraps the given error.
func WrapConsole(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got ConsoleError(%q)", human)
		if e != nil {
			technical += ": " + e.Error()
		}
	}
	return &consoleError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// WrapConsolef returns a new error that has both the message to show the user
// and an automatically generated Error() description, and that wraps the given
// error. The arguments given are the error to wrap, then the format followed
// by its arguments.
func WrapConsolef(e error, humanFormat string, a ...interface{}) error {
	return WrapConsole(e, fmt.Sprintf(humanFormat, a...), "")
}

// ConsoleMessage gets the message to display to the console for the given
// error. If err is or wraps an error created by this package, its console
// message is returned. Otherwise, err.Error() is returned.
func ConsoleMessage(err error) string {
	var conErr *consoleError
	if errors.As(err, &conErr) {
		return conErr.ConsoleMessage()
	}
	return err.Error()
}
