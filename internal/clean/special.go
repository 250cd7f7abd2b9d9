package clean

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/scan"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
)

func (d *Dispatcher) special(ctx context.Context, desc target.Descriptor, dryRun bool) []Outcome {
	switch desc.Special {
	case target.SpecialSnapshots:
		return d.thinSnapshots(ctx, desc.Key, dryRun)
	case target.SpecialHomebrew:
		return d.brewCleanup(ctx, desc.Key, dryRun)
	case target.SpecialDockerPrune:
		return d.dockerPrune(ctx, desc.Key, dryRun)
	case target.SpecialDownloads:
		return d.removeCandidates(desc.Key, d.scanner.DownloadsCandidates(), dryRun, "item(s)")
	case target.SpecialNodeModules:
		return d.removeCandidates(desc.Key, d.scanner.NodeModulesCandidates(), dryRun, "node_modules dir(s)")
	}
	err := fmt.Errorf("no handler for target %s", desc.Key)
	d.report.Error(err.Error())
	return []Outcome{{Key: desc.Key, Action: ActionSkipped, Err: err}}
}

func (d *Dispatcher) thinSnapshots(ctx context.Context, key string, dryRun bool) []Outcome {
	tmutil, err := core.FindExecutable([]string{d.env.TmutilPath})
	if err != nil {
		d.report.Warn("tmutil not found. Skipping.")
		return []Outcome{{Key: key, Action: ActionSkipped, Err: err}}
	}
	name, args := core.Elevate(d.isRoot(), tmutil, "thinlocalsnapshots", "/", "9999999999", "4")
	line := commandLine(name, args)

	if dryRun {
		snaps, err := d.scanner.Snapshots(ctx)
		if err != nil {
			d.report.Warn("Could not list snapshots: " + err.Error())
			return []Outcome{{Key: key, Path: line, Action: ActionSkipped, Err: err}}
		}
		d.report.DryRun(fmt.Sprintf("Would thin %d snapshot(s).", len(snaps)))
		return []Outcome{{Key: key, Path: line, Action: ActionWouldRun}}
	}

	d.report.Step("Deleting local Time Machine snapshots (thinning aggressively)...")
	return []Outcome{d.ran(ctx, key, ThinSnapshotsTimeout, name, args)}
}

func (d *Dispatcher) brewCleanup(ctx context.Context, key string, dryRun bool) []Outcome {
	brew, err := d.scanner.Brew()
	if err != nil {
		d.report.Warn("Homebrew not found. Skipping.")
		return []Outcome{{Key: key, Action: ActionSkipped, Err: err}}
	}
	args := []string{"cleanup", "--prune=all"}
	line := commandLine(brew, args)

	if dryRun {
		size, _ := d.scanner.SizeOf(ctx, key)
		d.report.DryRun(fmt.Sprintf("Would run brew cleanup --prune=all (approx. %s)", core.FormatSize(size.Bytes)))
		return []Outcome{{Key: key, Path: line, Action: ActionWouldRun}}
	}

	d.report.Step("Running brew cleanup --prune=all...")
	return []Outcome{d.ran(ctx, key, BrewCleanupTimeout, brew, args)}
}

func (d *Dispatcher) dockerPrune(ctx context.Context, key string, dryRun bool) []Outcome {
	docker, err := d.scanner.Docker()
	if err != nil {
		d.report.Warn("Docker not found or not in PATH. Skipping.")
		return []Outcome{{Key: key, Action: ActionSkipped, Err: err}}
	}
	// Volumes are left alone on purpose.
	args := []string{"system", "prune", "-af"}
	line := commandLine(docker, args)

	if dryRun {
		var reclaim int64
		if size, _ := d.scanner.SizeOf(ctx, key); size.Status == scan.StatusMeasured {
			reclaim = size.Bytes
		}
		d.report.DryRun(fmt.Sprintf("Would run docker system prune -af (reclaimable ~%s)", core.FormatSize(reclaim)))
		return []Outcome{{Key: key, Path: line, Action: ActionWouldRun}}
	}

	d.report.Step("Running docker system prune -af (no volumes)...")
	return []Outcome{d.ran(ctx, key, DockerPruneTimeout, docker, args)}
}

// ran executes a tool and converts its result into an outcome.
func (d *Dispatcher) ran(ctx context.Context, key string, timeout time.Duration, name string, args []string) Outcome {
	line := commandLine(name, args)
	if err := d.runner.Run(ctx, timeout, name, args...); err != nil {
		d.report.Error("Error: " + err.Error())
		d.log.Warn().Err(err).Str("command", line).Msg("command failed")
		return Outcome{Key: key, Path: line, Action: ActionFailed, Err: err}
	}
	return Outcome{Key: key, Path: line, Action: ActionRan}
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
