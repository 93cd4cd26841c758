package appcmd

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCommand is returned when a command with the same type and
	// name is already registered in the same scope.
	ErrDuplicateCommand = errors.New("appcmd: duplicate command")

	// ErrAlreadyResponded is returned when an interaction that has already
	// been responded to receives a second initial response.
	ErrAlreadyResponded = errors.New("appcmd: interaction already responded to")

	// ErrUnknownCommand is returned when an interaction references a command
	// that is not registered with the router.
	ErrUnknownCommand = errors.New("appcmd: unknown command")
)

// ValidationError reports a command definition that violates Discord's
// documented limits.
type ValidationError struct {
	Command string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("appcmd: invalid command %q: %s: %s", e.Command, e.Field, e.Reason)
}

// IncompatibleSignatureError reports an interaction payload that names a
// subcommand or option absent from the locally registered definition. This
// usually means the definitions registered with Discord are stale.
type IncompatibleSignatureError struct {
	Command string
	Detail  string
}

func (e *IncompatibleSignatureError) Error() string {
	return fmt.Sprintf("appcmd: interaction payload incompatible with command %q: %s", e.Command, e.Detail)
}
