package executil

import (
	"context"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// Line returns the shell line of a command run through Shell.
func (c RecordedCommand) Line() string {
	if c.Cmd == "sh" && len(c.Args) == 2 && c.Args[0] == "-c" {
		return c.Args[1]
	}
	return ""
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	// Key is the command name (e.g., "sh").
	Outputs map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(_ context.Context, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: args})

	return e.Outputs[cmd], e.Errors[cmd]
}

// Lines returns the shell lines run so far.
func (e *RecordingExecutor) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	lines := make([]string, 0, len(e.Commands))
	for _, c := range e.Commands {
		lines = append(lines, c.Line())
	}
	return lines
}
