// Package coretest provides test doubles for package core.
package coretest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Runner is a testify mock implementing core.Runner. Expectations are keyed
// on the command name followed by its arguments.
type Runner struct {
	mock.Mock
}

func (r *Runner) Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	call := r.Called(append([]any{name}, toAny(args)...)...)
	out, _ := call.Get(0).([]byte)
	return out, call.Error(1)
}

func (r *Runner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	call := r.Called(append([]any{name}, toAny(args)...)...)
	return call.Error(0)
}

func toAny(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
