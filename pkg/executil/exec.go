// Package executil runs external commands bound to browser keys.
package executil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// Shell runs line through sh -c. A failing command's output is folded
// into the returned error.
func Shell(ctx context.Context, e Executor, line string) error {
	out, err := e.Run(ctx, "sh", "-c", line)
	if err == nil {
		return nil
	}

	if msg := strings.TrimSpace(string(out)); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}
