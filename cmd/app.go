package cmd

import (
	"bufio"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
	"github.com/lakshaymaurya-felt/macsysclean/internal/scan"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
	"github.com/lakshaymaurya-felt/macsysclean/internal/ui"
)

// AppOptions overrides the host defaults used to build an App. Zero values
// select the real environment.
type AppOptions struct {
	Env      *config.Env
	Runner   core.Runner
	In       io.Reader
	Terminal *bool
	LogOut   io.Writer
	Scan     []scan.Option
}

// App bundles the collaborators shared by every command. It is built once
// per invocation; the settings snapshot is never reloaded.
type App struct {
	Env      config.Env
	Settings config.Settings
	Registry *target.Registry
	Runner   core.Runner
	Scanner  *scan.Scanner
	Printer  *ui.Printer
	Log      zerolog.Logger

	// In is the raw input handed to the checklist; Lines buffers the same
	// stream for line prompts.
	In       io.Reader
	Lines    *bufio.Reader
	Terminal bool
}

// NewApp wires the application for one run.
func NewApp(opts AppOptions, out io.Writer, debug bool) *App {
	logCfg := logging.ConfigFromEnv(debug)
	if opts.LogOut != nil {
		logCfg.Output = opts.LogOut
	}
	log := logging.New(logCfg)

	env := config.DetectEnv()
	if opts.Env != nil {
		env = *opts.Env
	}

	runner := opts.Runner
	if runner == nil {
		runner = core.NewExecRunner()
	}

	in := opts.In
	terminal := false
	if in == nil {
		in = os.Stdin
		terminal = ui.IsTerminal(os.Stdin)
	}
	if opts.Terminal != nil {
		terminal = *opts.Terminal
	}

	settings := config.Load(env)
	reg := target.Default(env)

	log.Debug().
		Str("home", env.Home).
		Strs("exclude", settings.ExcludeTargets).
		Int("downloads_days_old", settings.DownloadsDaysOld).
		Msg("settings loaded")

	return &App{
		Env:      env,
		Settings: settings,
		Registry: reg,
		Runner:   runner,
		Scanner:  scan.New(reg, env, settings, runner, log, opts.Scan...),
		Printer:  ui.NewPrinter(out),
		Log:      log,
		In:       in,
		Lines:    bufio.NewReader(in),
		Terminal: terminal,
	}
}
