package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0o644))

	tool := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	t.Run("first executable wins", func(t *testing.T) {
		got, err := FindExecutable([]string{filepath.Join(dir, "missing"), sub, tool})
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	})

	t.Run("non-executable is skipped", func(t *testing.T) {
		if IsRoot() {
			t.Skip("root bypasses execute permission checks")
		}
		_, err := FindExecutable([]string{plain})
		assert.ErrorIs(t, err, ErrToolNotFound)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := FindExecutable(nil)
		assert.ErrorIs(t, err, ErrToolNotFound)
	})
}

func TestExecRunnerOutput(t *testing.T) {
	r := &ExecRunner{}

	out, err := r.Output(context.Background(), 5*time.Second, "/bin/sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestExecRunnerExitCode(t *testing.T) {
	r := &ExecRunner{}

	_, err := r.Output(context.Background(), 5*time.Second, "/bin/sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)

	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.ExitCode)
	assert.Equal(t, "boom", ce.Output)
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestExecRunnerTimeout(t *testing.T) {
	r := &ExecRunner{}

	err := r.Run(context.Background(), 50*time.Millisecond, "/bin/sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExecRunnerRunStreams(t *testing.T) {
	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout}

	require.NoError(t, r.Run(context.Background(), 5*time.Second, "/bin/sh", "-c", "echo streamed"))
	assert.Equal(t, "streamed\n", stdout.String())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}

	_, err := r.Output(context.Background(), time.Second, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Zero(t, ce.ExitCode)
}
