package engine

import "errors"

var (
	// ErrNoPrefix indicates no canonical installation root could be determined.
	ErrNoPrefix = errors.New("no installation prefix")

	// ErrNoCommand indicates run was invoked without a command to execute.
	ErrNoCommand = errors.New("no command given")
)
