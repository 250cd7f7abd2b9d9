// Package clean carries out the deletions for selected cleanup targets.
package clean

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
	"github.com/lakshaymaurya-felt/macsysclean/internal/scan"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
)

// Timeouts for mutating tool invocations.
const (
	ThinSnapshotsTimeout  = 300 * time.Second
	BrewCleanupTimeout    = 120 * time.Second
	DockerPruneTimeout    = 300 * time.Second
	ElevatedRemoveTimeout = 300 * time.Second
)

// Action is what happened to a single path or command.
type Action int

const (
	ActionDeleted Action = iota
	ActionWouldDelete
	ActionFailed
	ActionSkipped
	ActionRan
	ActionWouldRun
)

func (a Action) String() string {
	switch a {
	case ActionDeleted:
		return "deleted"
	case ActionWouldDelete:
		return "would delete"
	case ActionFailed:
		return "failed"
	case ActionSkipped:
		return "skipped"
	case ActionRan:
		return "ran"
	case ActionWouldRun:
		return "would run"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Outcome records one deletion decision. Path holds the command line for
// tool-driven targets.
type Outcome struct {
	Key    string
	Path   string
	Action Action
	Err    error
}

// Reporter receives human-facing progress while cleaning.
type Reporter interface {
	Begin()
	Section(title string)
	Step(msg string)
	DryRun(msg string)
	Warn(msg string)
	Error(msg string)
	Done()
}

// Dispatcher deletes targets one at a time in the order requested.
type Dispatcher struct {
	reg     *target.Registry
	scanner *scan.Scanner
	env     config.Env
	runner  core.Runner
	report  Reporter
	log     zerolog.Logger

	isRoot func() bool
	remove func(path string) error
}

// New creates a dispatcher.
func New(reg *target.Registry, scanner *scan.Scanner, env config.Env, runner core.Runner, report Reporter, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		reg:     reg,
		scanner: scanner,
		env:     env,
		runner:  runner,
		report:  report,
		log:     logging.Component(log, "clean"),
		isRoot:  core.IsRoot,
		remove:  core.RemovePath,
	}
}

// PerformCleanup processes keys sequentially. A failure in one target never
// prevents later targets from being attempted, and nothing is rolled back.
func (d *Dispatcher) PerformCleanup(ctx context.Context, keys []string, dryRun bool) []Outcome {
	d.report.Begin()

	var out []Outcome
	for _, key := range keys {
		desc, err := d.reg.Lookup(key)
		if err != nil {
			d.report.Error(err.Error())
			out = append(out, Outcome{Key: key, Action: ActionSkipped, Err: err})
			continue
		}

		d.report.Section(desc.Description)
		if desc.Warning != "" {
			d.report.Warn(desc.Warning)
		}
		d.log.Debug().Str("target", key).Bool("dry_run", dryRun).Msg("cleaning target")

		var res []Outcome
		switch {
		case desc.Kind == target.KindSpecial:
			res = d.special(ctx, desc, dryRun)
		case desc.WholePath():
			res = d.wholePaths(ctx, desc, dryRun)
		default:
			res = d.globs(ctx, desc, dryRun)
		}
		out = append(out, res...)
		d.report.Done()
	}
	return out
}

// Tally counts outcomes per action.
func Tally(outcomes []Outcome) map[Action]int {
	t := make(map[Action]int)
	for _, o := range outcomes {
		t[o.Action]++
	}
	return t
}
