// Package scan measures how much space each cleanup target holds.
package scan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
)

// Defaults for the node_modules search.
const (
	DefaultNodeModulesMaxDepth = 4
	DefaultNodeModulesDaysOld  = 30
)

// maxWarnings bounds the warnings kept in memory during a scan.
const maxWarnings = 500

// Status tells a measured zero apart from an absent or failed one.
type Status int

const (
	// StatusMeasured means the value was computed.
	StatusMeasured Status = iota
	// StatusAbsent means nothing exists to measure (missing path or tool).
	StatusAbsent
	// StatusFailed means a tool or the filesystem refused to answer.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusMeasured:
		return "measured"
	case StatusAbsent:
		return "absent"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Size is the approximate byte total of a target.
type Size struct {
	Bytes  int64
	Status Status
	Err    error
}

// Count is the number of items a target holds. Valid is false when a count
// is meaningless for the target.
type Count struct {
	N     int
	Valid bool
}

// Candidate is a path selected for deletion along with its size.
type Candidate struct {
	Path string
	Size int64
}

// Scanner walks the filesystem and queries external tools for each target.
// It is not safe for concurrent use; scans are strictly sequential.
type Scanner struct {
	reg      *target.Registry
	env      config.Env
	settings config.Settings
	runner   core.Runner
	log      zerolog.Logger

	now                 func() time.Time
	nodeModulesMaxDepth int
	nodeModulesDaysOld  int

	warnings []string
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithClock replaces time.Now for age cutoffs.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// WithNodeModules overrides the node_modules search depth and age threshold.
func WithNodeModules(maxDepth, daysOld int) Option {
	return func(s *Scanner) {
		if maxDepth >= 0 {
			s.nodeModulesMaxDepth = maxDepth
		}
		if daysOld > 0 {
			s.nodeModulesDaysOld = daysOld
		}
	}
}

// New creates a scanner over the registry.
func New(reg *target.Registry, env config.Env, settings config.Settings, runner core.Runner, log zerolog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		reg:                 reg,
		env:                 env,
		settings:            settings,
		runner:              runner,
		log:                 logging.Component(log, "scanner"),
		now:                 time.Now,
		nodeModulesMaxDepth: DefaultNodeModulesMaxDepth,
		nodeModulesDaysOld:  DefaultNodeModulesDaysOld,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Warnings returns any warnings accumulated during scanning.
func (s *Scanner) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

func (s *Scanner) addWarning(msg string) {
	s.log.Debug().Msg(msg)
	if len(s.warnings) < maxWarnings {
		s.warnings = append(s.warnings, msg)
	}
}

// VisibleTargets returns registry keys minus the excluded ones and, unless
// includeRisky is set, minus the risky ones. Registry order is kept.
func (s *Scanner) VisibleTargets(includeRisky bool, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		excluded[k] = true
	}

	var keys []string
	for _, k := range s.reg.Keys() {
		if excluded[k] {
			continue
		}
		if !includeRisky && s.reg.Risky(k) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// SizeOf returns the approximate size of a target. The error is non-nil only
// for unknown keys; measurement failures are reported through Size.Status.
func (s *Scanner) SizeOf(ctx context.Context, key string) (Size, error) {
	d, err := s.reg.Lookup(key)
	if err != nil {
		return Size{}, err
	}

	if d.Kind == target.KindPaths {
		return s.pathsSize(d.Paths), nil
	}

	switch d.Special {
	case target.SpecialSnapshots:
		// tmutil reports no byte totals; the count is the whole story.
		if _, err := s.Snapshots(ctx); err != nil {
			return statusFromErr(err), nil
		}
		return Size{Status: StatusMeasured}, nil

	case target.SpecialHomebrew:
		cache, err := s.BrewCache(ctx)
		if err != nil {
			return statusFromErr(err), nil
		}
		return s.pathsSize([]string{cache}), nil

	case target.SpecialDockerPrune:
		n, err := s.DockerReclaimable(ctx)
		if err != nil {
			return statusFromErr(err), nil
		}
		return Size{Bytes: n, Status: StatusMeasured}, nil

	case target.SpecialDownloads:
		if !core.Exists(s.env.DownloadsDir) {
			return Size{Status: StatusAbsent}, nil
		}
		return Size{Bytes: total(s.DownloadsCandidates()), Status: StatusMeasured}, nil

	case target.SpecialNodeModules:
		return Size{Bytes: total(s.NodeModulesCandidates()), Status: StatusMeasured}, nil
	}

	return Size{Status: StatusAbsent}, nil
}

// CountOf returns the number of items a target holds: top-level entries per
// path, or the candidate count for special targets.
func (s *Scanner) CountOf(ctx context.Context, key string) (Count, error) {
	d, err := s.reg.Lookup(key)
	if err != nil {
		return Count{}, err
	}

	if d.Kind == target.KindPaths {
		n := 0
		for _, p := range d.Paths {
			n += s.TopLevelCount(p)
		}
		return Count{N: n, Valid: n > 0}, nil
	}

	switch d.Special {
	case target.SpecialSnapshots:
		snaps, err := s.Snapshots(ctx)
		if err != nil {
			return Count{}, nil
		}
		return Count{N: len(snaps), Valid: true}, nil

	case target.SpecialHomebrew:
		cache, err := s.BrewCache(ctx)
		if err != nil || !core.Exists(cache) {
			return Count{}, nil
		}
		return Count{N: s.TopLevelCount(cache), Valid: true}, nil

	case target.SpecialDockerPrune:
		return Count{}, nil

	case target.SpecialDownloads:
		return Count{N: len(s.DownloadsCandidates()), Valid: true}, nil

	case target.SpecialNodeModules:
		return Count{N: len(s.NodeModulesCandidates()), Valid: true}, nil
	}

	return Count{}, nil
}

// pathsSize sums the recursive size of every existing path.
func (s *Scanner) pathsSize(paths []string) Size {
	var (
		sum      int64
		measured bool
		lastErr  error
	)
	for _, p := range paths {
		if !core.Exists(p) {
			continue
		}
		n, err := s.DirSize(p)
		if err != nil {
			lastErr = err
			continue
		}
		sum += n
		measured = true
	}

	switch {
	case measured:
		return Size{Bytes: sum, Status: StatusMeasured, Err: lastErr}
	case lastErr != nil:
		return failed(lastErr)
	default:
		return Size{Status: StatusAbsent}
	}
}

func failed(err error) Size {
	return Size{Status: StatusFailed, Err: err}
}

// statusFromErr maps a missing tool to StatusAbsent and anything else to
// StatusFailed.
func statusFromErr(err error) Size {
	if isAbsent(err) {
		return Size{Status: StatusAbsent, Err: err}
	}
	return failed(err)
}

func total(items []Candidate) int64 {
	var n int64
	for _, c := range items {
		n += c.Size
	}
	return n
}
