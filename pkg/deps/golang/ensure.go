package golang

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultEnsureTimeout bounds a single `dep ensure` run.
const DefaultEnsureTimeout = 5 * time.Minute

// Ensurer brings a project's lock file up to date before it is read.
type Ensurer interface {
	Ensure(ctx context.Context, dir string) error
}

// CommandEnsurer runs an external command (by default `dep ensure`) in the
// project directory.
type CommandEnsurer struct {
	Command string        // Executable, default "dep"
	Args    []string      // Arguments, default ["ensure"]
	Timeout time.Duration // Per-run timeout, default DefaultEnsureTimeout
}

// Ensure runs the command in dir and returns an error carrying the
// command's combined output when it fails or times out.
func (e CommandEnsurer) Ensure(ctx context.Context, dir string) error {
	name := e.Command
	if name == "" {
		name = "dep"
	}
	args := e.Args
	if len(args) == 0 {
		args = []string{"ensure"}
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultEnsureTimeout
	}

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s %s timed out after %s", name, strings.Join(args, " "), timeout)
		}
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return nil
}

// EnsureFunc adapts a function to the Ensurer interface.
type EnsureFunc func(ctx context.Context, dir string) error

// Ensure calls f(ctx, dir).
func (f EnsureFunc) Ensure(ctx context.Context, dir string) error { return f(ctx, dir) }
