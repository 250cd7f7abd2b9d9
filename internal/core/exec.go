package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// ErrToolNotFound is returned when none of the candidate binaries exist.
var ErrToolNotFound = errors.New("tool not found")

// maxErrorOutput bounds how much command output is carried in an error.
const maxErrorOutput = 200

// Runner executes external commands with a wall-clock timeout.
type Runner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error)

	// Run runs the command attached to the terminal (sudo may prompt).
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) error
}

// CommandError describes a failed external command.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Timeout  time.Duration
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return fmt.Sprintf("%s timed out after %s", e.Command, e.Timeout)
	case e.ExitCode > 0 && e.Output != "":
		return fmt.Sprintf("%s failed (exit code %d): %s", e.Command, e.ExitCode, e.Output)
	case e.ExitCode > 0:
		return fmt.Sprintf("%s failed (exit code %d)", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs commands with os/exec. Run streams to the configured
// writers, falling back to the process' own stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process' stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, commandError(ctx, name, args, timeout, err, stderr.Bytes())
	}
	return out, nil
}

func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return commandError(ctx, name, args, timeout, err, nil)
	}
	return nil
}

// commandError wraps an exec error with the command line, exit code and a
// truncated copy of its output.
func commandError(ctx context.Context, name string, args []string, timeout time.Duration, err error, output []byte) error {
	ce := &CommandError{
		Command: strings.TrimSpace(name + " " + strings.Join(args, " ")),
		Timeout: timeout,
		Err:     err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ce.Err = context.DeadlineExceeded
		return ce
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}

	out := strings.TrimSpace(string(output))
	if len(out) > maxErrorOutput {
		// Truncate at a valid UTF-8 boundary.
		out = out[:maxErrorOutput]
		for len(out) > 0 && !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
		out += "..."
	}
	ce.Output = out
	return ce
}

// FindExecutable returns the first candidate that is a regular file the
// current user may execute.
func FindExecutable(candidates []string) (string, error) {
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if unix.Access(p, unix.X_OK) == nil {
			return p, nil
		}
	}
	return "", ErrToolNotFound
}
