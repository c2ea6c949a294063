// Package player runs the external decoder in slave mode: it launches the process, streams its merged
// output line by line, writes commands to its stdin and shuts it down.
package player

import (
	"context"
	"errors"
)

// ErrLaunch wraps every failure to start the decoder.
var ErrLaunch = errors.New("decoder could not be started")

// Exit is how a decoder process ended.
type Exit struct {
	Code int
	// Crashed is set when the process was ended by a signal.
	Crashed bool
}

// Process is a running decoder.
type Process interface {
	// Lines delivers the merged stdout and stderr in emission order. It is closed once the process has
	// exited and every line was delivered.
	Lines() <-chan string

	// Send writes one command line to the decoder's stdin.
	Send(cmd string) error

	// PID is the process id of the decoder.
	PID() int

	// ChildPID is the first child of the decoder, when the platform exposes it.
	ChildPID() (int, bool)

	// Dir is the working directory, where the decoder writes screenshots.
	Dir() string

	// Terminate asks the decoder to quit and escalates to signals until it is gone or ctx ends.
	Terminate(ctx context.Context) error

	// ExitStatus is meaningful once Lines is closed.
	ExitStatus() Exit
}

// Launcher starts decoders.
type Launcher interface {
	Launch(target string) (Process, error)
}
