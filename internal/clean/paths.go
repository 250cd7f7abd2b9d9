package clean

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/scan"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
)

// ErrProtected is returned when a whole-path target points at a protected
// system or home directory.
var ErrProtected = errors.New("refusing to delete protected path")

// globs removes the matches of each deletion glob below every existing
// path, never the path itself. Failures are recorded and the loop goes on.
func (d *Dispatcher) globs(ctx context.Context, desc target.Descriptor, dryRun bool) []Outcome {
	var out []Outcome
	for _, parent := range desc.Paths {
		if !core.Exists(parent) {
			continue
		}
		for _, m := range matches(parent, desc.DeletionGlobs) {
			if dryRun {
				d.report.DryRun("rm -rf " + m)
				out = append(out, Outcome{Key: desc.Key, Path: m, Action: ActionWouldDelete})
				continue
			}
			err := d.remove(m)
			if err != nil && desc.RequiresElevation && core.IsPermission(err) {
				err = d.elevatedRemove(ctx, m)
			}
			out = append(out, d.removed(desc.Key, m, err))
		}
	}
	return out
}

// matches expands patterns rooted at parent. The parent is escaped so that
// metacharacters in directory names are taken literally.
func matches(parent string, patterns []string) []string {
	root := filepath.Clean(parent)
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		found, err := filepath.Glob(filepath.Join(escapeGlob(root), pattern))
		if err != nil {
			continue
		}
		for _, m := range found {
			m = filepath.Clean(m)
			if m == root || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func escapeGlob(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wholePaths removes each existing path outright, retrying once with
// elevation when the direct removal is denied.
func (d *Dispatcher) wholePaths(ctx context.Context, desc target.Descriptor, dryRun bool) []Outcome {
	var out []Outcome
	for _, p := range desc.Paths {
		if !core.Exists(p) {
			continue
		}
		if d.env.IsProtected(p) {
			err := fmt.Errorf("%w: %s", ErrProtected, p)
			d.report.Error(err.Error())
			out = append(out, Outcome{Key: desc.Key, Path: p, Action: ActionFailed, Err: err})
			continue
		}
		if dryRun {
			d.report.DryRun("rm -rf " + p)
			out = append(out, Outcome{Key: desc.Key, Path: p, Action: ActionWouldDelete})
			continue
		}
		err := d.remove(p)
		if err != nil && core.IsPermission(err) {
			err = d.elevatedRemove(ctx, p)
		}
		out = append(out, d.removed(desc.Key, p, err))
	}
	return out
}

// removeCandidates deletes scanner-selected paths for the special targets
// that work on plain files.
func (d *Dispatcher) removeCandidates(key string, items []scan.Candidate, dryRun bool, noun string) []Outcome {
	var out []Outcome
	for _, c := range items {
		if dryRun {
			d.report.DryRun("rm -rf " + c.Path)
			out = append(out, Outcome{Key: key, Path: c.Path, Action: ActionWouldDelete})
			continue
		}
		out = append(out, d.removed(key, c.Path, d.remove(c.Path)))
	}
	if dryRun {
		d.report.DryRun(fmt.Sprintf("%d %s", len(items), noun))
	}
	return out
}

func (d *Dispatcher) removed(key, path string, err error) Outcome {
	if err != nil {
		d.log.Debug().Err(err).Str("path", path).Msg("remove failed")
		return Outcome{Key: key, Path: path, Action: ActionFailed, Err: err}
	}
	d.log.Debug().Str("path", path).Msg("removed")
	return Outcome{Key: key, Path: path, Action: ActionDeleted}
}

// elevatedRemove deletes path through an elevated shell.
func (d *Dispatcher) elevatedRemove(ctx context.Context, path string) error {
	d.log.Debug().Str("path", path).Msg("retrying removal with elevation")
	return d.runner.Run(ctx, ElevatedRemoveTimeout, "/bin/sh", "-c", elevatedRemoveCommand(path, d.isRoot()))
}

// elevatedRemoveCommand builds the shell line used for elevated removal.
func elevatedRemoveCommand(path string, root bool) string {
	line := shellquote.Join("rm", "-rf", "--", path)
	if root {
		return line
	}
	return "sudo " + line
}
