// Package maintenance runs small macOS upkeep tasks: flushing the DNS cache
// and freeing purgeable space.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
)

// Tool locations and timeouts.
const (
	DscacheutilPath = "/usr/bin/dscacheutil"
	KillallPath     = "/usr/bin/killall"
	PurgePath       = "/usr/sbin/purge"

	sudoProbeTimeout = 5 * time.Second
	dnsTimeout       = 10 * time.Second
	purgeTimeout     = 60 * time.Second
)

// ErrNeedsSudo is returned when a task cannot run without elevation.
var ErrNeedsSudo = errors.New("requires sudo")

// SudoError carries the command line the user should re-run with sudo.
type SudoError struct {
	Hint string
}

func (e *SudoError) Error() string {
	return "Requires sudo. Run: " + e.Hint
}

func (e *SudoError) Unwrap() error { return ErrNeedsSudo }

// Hints printed with SudoError.
const (
	DNSHint       = "sudo mac-sysclean maintenance --dns"
	PurgeableHint = "sudo mac-sysclean maintenance --purgeable"
)

// Service runs maintenance tasks through a command runner.
type Service struct {
	runner core.Runner
	log    zerolog.Logger
	isRoot func() bool
}

// New creates a maintenance service.
func New(runner core.Runner, log zerolog.Logger) *Service {
	return &Service{
		runner: runner,
		log:    logging.Component(log, "maintenance"),
		isRoot: core.IsRoot,
	}
}

// FlushDNS clears the resolver cache and signals mDNSResponder.
func (s *Service) FlushDNS(ctx context.Context) (string, error) {
	root := s.isRoot()
	if !root && !s.canSudo(ctx) {
		return "", &SudoError{Hint: DNSHint}
	}

	var prefix []string
	if !root {
		prefix = []string{"-n"}
	}

	steps := [][]string{
		{DscacheutilPath, "-flushcache"},
		{KillallPath, "-HUP", "mDNSResponder"},
	}
	for _, step := range steps {
		if err := s.run(ctx, dnsTimeout, !root, prefix, step); err != nil {
			s.log.Debug().Err(err).Str("command", step[0]).Msg("dns flush step failed")
			if permissionFlavoured(stderr(err)) {
				return "", &SudoError{Hint: DNSHint}
			}
			return "", err
		}
	}
	return "DNS cache flushed successfully", nil
}

// FreePurgeable asks the kernel to release purgeable pages. It tries with
// non-interactive sudo first, then without.
func (s *Service) FreePurgeable(ctx context.Context) (string, error) {
	const ok = "Purgeable space freed successfully"

	first := s.run(ctx, purgeTimeout, !s.isRoot(), []string{"-n"}, []string{PurgePath})
	if first == nil {
		return ok, nil
	}
	s.log.Debug().Err(first).Msg("purge failed, retrying without sudo")

	second := s.run(ctx, purgeTimeout, false, nil, []string{PurgePath})
	if second == nil {
		return ok, nil
	}

	combined := stderr(first) + stderr(second)
	if permissionFlavoured(combined) || strings.Contains(strings.ToLower(combined), "sudo") {
		return "", &SudoError{Hint: PurgeableHint}
	}
	return "", fmt.Errorf("purge failed: %w", first)
}

// canSudo probes for passwordless sudo.
func (s *Service) canSudo(ctx context.Context) bool {
	_, err := s.runner.Output(ctx, sudoProbeTimeout, "sudo", "-n", "true")
	return err == nil
}

// run executes cmd, wrapped in `sudo <sudoArgs...>` when sudo is set.
func (s *Service) run(ctx context.Context, timeout time.Duration, sudo bool, sudoArgs, cmd []string) error {
	name, args := cmd[0], cmd[1:]
	if sudo {
		name, args = "sudo", append(append(append([]string{}, sudoArgs...), cmd[0]), args...)
	}
	_, err := s.runner.Output(ctx, timeout, name, args...)
	return err
}

// stderr returns what the tool itself printed, without the command line.
func stderr(err error) string {
	var cerr *core.CommandError
	if errors.As(err, &cerr) {
		return cerr.Output
	}
	return err.Error()
}

func permissionFlavoured(msg string) bool {
	return strings.Contains(msg, "Operation not permitted") || strings.Contains(msg, "Permission denied")
}
