package clean

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/core/coretest"
	"github.com/lakshaymaurya-felt/macsysclean/internal/scan"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
)

type recorder struct {
	sections []string
	steps    []string
	dryRuns  []string
	warns    []string
	errors   []string
	done     int
}

func (r *recorder) Begin()            {}
func (r *recorder) Section(t string)  { r.sections = append(r.sections, t) }
func (r *recorder) Step(msg string)   { r.steps = append(r.steps, msg) }
func (r *recorder) DryRun(msg string) { r.dryRuns = append(r.dryRuns, msg) }
func (r *recorder) Warn(msg string)   { r.warns = append(r.warns, msg) }
func (r *recorder) Error(msg string)  { r.errors = append(r.errors, msg) }
func (r *recorder) Done()             { r.done++ }

type fixture struct {
	env    config.Env
	runner *coretest.Runner
	report *recorder
	d      *Dispatcher
}

func newFixture(t *testing.T, descs ...target.Descriptor) *fixture {
	t.Helper()
	env := config.NewEnv(t.TempDir())
	return newFixtureEnv(t, env, descs...)
}

func newFixtureEnv(t *testing.T, env config.Env, descs ...target.Descriptor) *fixture {
	t.Helper()
	reg := target.Default(env)
	if len(descs) > 0 {
		var err error
		reg, err = target.New(descs)
		require.NoError(t, err)
	}
	runner := &coretest.Runner{}
	report := &recorder{}
	sc := scan.New(reg, env, config.Defaults(), runner, zerolog.Nop())
	d := New(reg, sc, env, runner, report, zerolog.Nop())
	d.isRoot = func() bool { return false }
	return &fixture{env: env, runner: runner, report: report, d: d}
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func pathsWith(outcomes []Outcome, action Action) []string {
	var out []string
	for _, o := range outcomes {
		if o.Action == action {
			out = append(out, o.Path)
		}
	}
	sort.Strings(out)
	return out
}

func TestDryRunParityAndIdempotence(t *testing.T) {
	f := newFixture(t)
	trash := filepath.Join(f.env.Home, ".Trash")
	writeFile(t, filepath.Join(trash, "a"), 100)
	writeFile(t, filepath.Join(trash, ".hidden"), 1)
	writeFile(t, filepath.Join(trash, "dir", "b"), 200)

	ctx := context.Background()
	keys := []string{target.KeyTrash}

	preview := f.d.PerformCleanup(ctx, keys, true)
	would := pathsWith(preview, ActionWouldDelete)
	require.Len(t, would, 3)
	assert.True(t, core.Exists(filepath.Join(trash, "a")), "dry run must not delete")

	applied := f.d.PerformCleanup(ctx, keys, false)
	assert.Equal(t, would, pathsWith(applied, ActionDeleted))
	assert.Empty(t, pathsWith(applied, ActionFailed))

	assert.True(t, core.Exists(trash), "parent is kept")
	entries, err := os.ReadDir(trash)
	require.NoError(t, err)
	assert.Empty(t, entries)

	again := f.d.PerformCleanup(ctx, keys, false)
	assert.Empty(t, again)
}

func TestGlobsNeverMatchParent(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "p")
	writeFile(t, filepath.Join(parent, "child"), 1)

	got := matches(parent, []string{".", "*", ""})
	assert.Equal(t, []string{filepath.Join(parent, "child")}, got)
}

func TestGlobParentMetacharacters(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "a[1]*")
	writeFile(t, filepath.Join(parent, "x"), 1)

	assert.Equal(t, []string{filepath.Join(parent, "x")}, matches(parent, []string{"*"}))
}

func TestSubdirectoryGlobs(t *testing.T) {
	f := newFixture(t)
	models := filepath.Join(f.env.Home, ".ollama", "models")
	writeFile(t, filepath.Join(models, "blobs", "sha256-1"), 10)
	writeFile(t, filepath.Join(models, "manifests", "registry", "m"), 10)
	writeFile(t, filepath.Join(models, "keep.txt"), 1)

	f.d.PerformCleanup(context.Background(), []string{target.KeyOllamaModels}, false)

	assert.True(t, core.Exists(filepath.Join(models, "blobs")))
	assert.True(t, core.Exists(filepath.Join(models, "manifests")))
	assert.True(t, core.Exists(filepath.Join(models, "keep.txt")))
	assert.False(t, core.Exists(filepath.Join(models, "blobs", "sha256-1")))
	assert.False(t, core.Exists(filepath.Join(models, "manifests", "registry")))
}

func TestSymlinksAreNotFollowed(t *testing.T) {
	f := newFixture(t)
	trash := filepath.Join(f.env.Home, ".Trash")
	require.NoError(t, os.MkdirAll(trash, 0o755))

	shared := filepath.Join(t.TempDir(), "shared")
	writeFile(t, filepath.Join(shared, "precious"), 10)
	link := filepath.Join(trash, "link")
	require.NoError(t, os.Symlink(shared, link))

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyTrash}, false)

	assert.Equal(t, []string{link}, pathsWith(out, ActionDeleted))
	assert.False(t, core.Exists(link))
	assert.True(t, core.Exists(filepath.Join(shared, "precious")))
}

func TestWarningPrintedEvenInDryRun(t *testing.T) {
	f := newFixture(t)
	raw := filepath.Join(f.env.Home, "Docker.raw")
	writeFile(t, raw, 10)

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyDockerData}, true)

	require.Len(t, f.report.warns, 1)
	assert.Contains(t, f.report.warns[0], "Docker data")
	assert.Equal(t, []string{raw}, pathsWith(out, ActionWouldDelete))
	assert.True(t, core.Exists(raw))

	out = f.d.PerformCleanup(context.Background(), []string{target.KeyDockerData}, false)
	assert.Equal(t, []string{raw}, pathsWith(out, ActionDeleted))
	assert.False(t, core.Exists(raw))
}

func TestProtectedWholePathRefused(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	f := newFixtureEnv(t, env, target.Descriptor{
		Key:   "home",
		Kind:  target.KindPaths,
		Paths: []string{env.Home},
	})

	out := f.d.PerformCleanup(context.Background(), []string{"home"}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionFailed, out[0].Action)
	assert.ErrorIs(t, out[0].Err, ErrProtected)
	assert.True(t, core.Exists(env.Home))
}

func TestUnknownKeyDoesNotStopLoop(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.env.Home, ".Trash", "a"), 1)

	out := f.d.PerformCleanup(context.Background(), []string{"bogus", target.KeyTrash}, false)

	require.Len(t, out, 2)
	assert.Equal(t, ActionSkipped, out[0].Action)
	assert.ErrorIs(t, out[0].Err, target.ErrUnknownTarget)
	assert.Equal(t, ActionDeleted, out[1].Action)
}

func TestDownloadsCleanup(t *testing.T) {
	f := newFixture(t)
	old := filepath.Join(f.env.DownloadsDir, "old.dmg")
	fresh := filepath.Join(f.env.DownloadsDir, "fresh.dmg")
	writeFile(t, old, 10)
	writeFile(t, fresh, 10)
	past := time.Now().Add(-90 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	ctx := context.Background()
	preview := f.d.PerformCleanup(ctx, []string{target.KeyDownloads}, true)
	assert.Equal(t, []string{old}, pathsWith(preview, ActionWouldDelete))
	assert.Contains(t, f.report.dryRuns, "1 item(s)")

	out := f.d.PerformCleanup(ctx, []string{target.KeyDownloads}, false)
	assert.Equal(t, []string{old}, pathsWith(out, ActionDeleted))
	assert.False(t, core.Exists(old))
	assert.True(t, core.Exists(fresh))
}

func TestNodeModulesCleanup(t *testing.T) {
	f := newFixture(t)
	nm := filepath.Join(f.env.Home, "Projects", "gone", "node_modules")
	writeFile(t, filepath.Join(nm, "dep", "index.js"), 10)

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyNodeModules}, false)
	assert.Equal(t, []string{nm}, pathsWith(out, ActionDeleted))
	assert.False(t, core.Exists(nm))
	assert.True(t, core.Exists(filepath.Dir(nm)))
}

func TestBrewCleanup(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	brew := filepath.Join(env.Home, "bin", "brew")
	writeExecutable(t, brew)
	env.BrewPaths = []string{brew}
	f := newFixtureEnv(t, env)

	f.runner.On("Run", brew, "cleanup", "--prune=all").Return(nil)

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyHomebrew}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionRan, out[0].Action)
	assert.Equal(t, brew+" cleanup --prune=all", out[0].Path)
	f.runner.AssertExpectations(t)
}

func TestMissingToolsAreSkipped(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	env.BrewPaths = []string{filepath.Join(env.Home, "no-brew")}
	env.DockerPaths = []string{filepath.Join(env.Home, "no-docker")}
	env.TmutilPath = filepath.Join(env.Home, "no-tmutil")
	f := newFixtureEnv(t, env)

	keys := []string{target.KeyHomebrew, target.KeyDockerPrune, target.KeyTimeMachineSnapshots}
	out := f.d.PerformCleanup(context.Background(), keys, false)

	require.Len(t, out, 3)
	for _, o := range out {
		assert.Equal(t, ActionSkipped, o.Action, o.Key)
		assert.ErrorIs(t, o.Err, core.ErrToolNotFound, o.Key)
	}
	assert.Len(t, f.report.warns, 3)
	f.runner.AssertNotCalled(t, "Run")
}

func TestToolFailureDoesNotAbortLaterTargets(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	docker := filepath.Join(env.Home, "bin", "docker")
	writeExecutable(t, docker)
	env.DockerPaths = []string{docker}
	f := newFixtureEnv(t, env)
	writeFile(t, filepath.Join(env.Home, ".Trash", "x"), 1)

	f.runner.On("Run", docker, "system", "prune", "-af").Return(errors.New("daemon down"))

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyDockerPrune, target.KeyTrash}, false)

	require.Len(t, out, 2)
	assert.Equal(t, ActionFailed, out[0].Action)
	assert.Equal(t, ActionDeleted, out[1].Action)
	assert.Len(t, f.report.errors, 1)
}

func TestThinSnapshotsElevates(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	tmutil := filepath.Join(env.Home, "bin", "tmutil")
	writeExecutable(t, tmutil)
	env.TmutilPath = tmutil
	f := newFixtureEnv(t, env)

	f.runner.On("Run", "sudo", tmutil, "thinlocalsnapshots", "/", "9999999999", "4").Return(nil)

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyTimeMachineSnapshots}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionRan, out[0].Action)
	f.runner.AssertExpectations(t)
}

func TestThinSnapshotsDryRun(t *testing.T) {
	env := config.NewEnv(t.TempDir())
	tmutil := filepath.Join(env.Home, "bin", "tmutil")
	writeExecutable(t, tmutil)
	env.TmutilPath = tmutil
	f := newFixtureEnv(t, env)

	f.runner.On("Output", tmutil, "listlocalsnapshots", "/").Return([]byte(
		"com.apple.TimeMachine.2024-01-02-030405.local\ncom.apple.TimeMachine.2024-01-03-030405.local\n"), nil)

	out := f.d.PerformCleanup(context.Background(), []string{target.KeyTimeMachineSnapshots}, true)
	require.Len(t, out, 1)
	assert.Equal(t, ActionWouldRun, out[0].Action)
	assert.Equal(t, []string{"Would thin 2 snapshot(s)."}, f.report.dryRuns)
	f.runner.AssertNotCalled(t, "Run")
}

func TestElevatedRemoveCommand(t *testing.T) {
	path := "/Library/Caches/it's a dir"

	words, err := shellquote.Split(elevatedRemoveCommand(path, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "rm", "-rf", "--", path}, words)

	words, err = shellquote.Split(elevatedRemoveCommand(path, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"rm", "-rf", "--", path}, words)
}

func denied(path string) error {
	return &os.PathError{Op: "unlinkat", Path: path, Err: fs.ErrPermission}
}

func TestDeniedWholePathRetriesElevated(t *testing.T) {
	home := t.TempDir()
	data := filepath.Join(home, "Docker.raw")
	writeFile(t, data, 10)
	f := newFixture(t, target.Descriptor{Key: "data", Kind: target.KindPaths, Paths: []string{data}})
	f.d.remove = denied

	f.runner.On("Run", "/bin/sh", "-c", "sudo rm -rf -- "+shellquote.Join(data)).Return(nil)

	out := f.d.PerformCleanup(context.Background(), []string{"data"}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionDeleted, out[0].Action)
	f.runner.AssertExpectations(t)
}

func TestDeniedElevatedGlobRetries(t *testing.T) {
	logs := filepath.Join(t.TempDir(), "log")
	entry := filepath.Join(logs, "system.log")
	writeFile(t, entry, 10)
	f := newFixture(t, target.Descriptor{
		Key: "logs", Kind: target.KindPaths, Paths: []string{logs},
		DeletionGlobs: []string{"*"}, RequiresElevation: true,
	})
	f.d.remove = denied
	f.d.isRoot = func() bool { return true }

	f.runner.On("Run", "/bin/sh", "-c", "rm -rf -- "+shellquote.Join(entry)).Return(errors.New("exit status 1"))

	out := f.d.PerformCleanup(context.Background(), []string{"logs"}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionFailed, out[0].Action)
	f.runner.AssertExpectations(t)
}

func TestDeniedGlobWithoutElevationIsNotRetried(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "Caches")
	entry := filepath.Join(cache, "app")
	writeFile(t, filepath.Join(entry, "blob"), 10)
	f := newFixture(t, target.Descriptor{
		Key: "cache", Kind: target.KindPaths, Paths: []string{cache}, DeletionGlobs: []string{"*"},
	})
	f.d.remove = denied

	out := f.d.PerformCleanup(context.Background(), []string{"cache"}, false)
	require.Len(t, out, 1)
	assert.Equal(t, ActionFailed, out[0].Action)
	assert.ErrorIs(t, out[0].Err, fs.ErrPermission)
	assert.DirExists(t, entry)
	f.runner.AssertNotCalled(t, "Run")
}

func TestTally(t *testing.T) {
	got := Tally([]Outcome{
		{Action: ActionDeleted},
		{Action: ActionDeleted},
		{Action: ActionFailed},
	})
	assert.Equal(t, 2, got[ActionDeleted])
	assert.Equal(t, 1, got[ActionFailed])
	assert.Zero(t, got[ActionSkipped])
}
