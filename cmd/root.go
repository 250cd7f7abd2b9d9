package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macsysclean/internal/clean"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
	"github.com/lakshaymaurya-felt/macsysclean/internal/ui"
)

var (
	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// rootOptions holds the top-level flags.
type rootOptions struct {
	debug       bool
	scan        bool
	interactive bool
	clean       bool
	dryRun      bool
	force       bool
	risky       bool
}

// Execute runs the root command against the real host.
func Execute() error {
	return newRootCmd(AppOptions{}).Execute()
}

// newRootCmd builds the command tree. opts lets tests substitute the
// environment and the command runner.
func newRootCmd(opts AppOptions) *cobra.Command {
	flags := &rootOptions{}
	var app *App

	root := &cobra.Command{
		Use:   "mac-sysclean [--scan] [--interactive] [--clean KEY...]",
		Short: "Inspect & clean macOS System Data culprits safely",
		Long: `mac-sysclean - Inspect & clean macOS System Data culprits safely.

Scans caches, logs, snapshots, developer leftovers and other reclaimable
storage, then removes only what you select. Nothing is deleted without
confirmation.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app = NewApp(opts, cmd.OutOrStdout(), flags.debug)
			cmd.SetContext(logging.WithContext(cmd.Context(), app.Log))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, app, flags, args)
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			a := NewApp(opts, cmd.OutOrStdout(), false)
			return a.Registry.Keys(), cobra.ShellCompDirectiveNoFileComp
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	f := root.Flags()
	f.BoolVar(&flags.scan, "scan", false, "Just scan and report sizes")
	f.BoolVar(&flags.interactive, "interactive", false, "Scan, then interactively choose what to clean")
	f.BoolVar(&flags.clean, "clean", false, "Clean the target keys given as arguments (e.g. --clean time_machine_snapshots user_caches)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Show what would be deleted without deleting")
	f.BoolVar(&flags.force, "force", false, "Allow dangerous targets (docker_data, system_caches, private_tmp)")
	f.BoolVar(&flags.risky, "risky", false, "Include risky targets (ios_backups, docker_data, system_caches, private_tmp)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Show detailed operation logs")

	appFn := func() *App { return app }
	root.AddCommand(newMaintenanceCmd(appFn))
	root.AddCommand(newCategoriesCmd(appFn))
	root.AddCommand(newConfigCmd(appFn))
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func runRoot(cmd *cobra.Command, app *App, flags *rootOptions, args []string) error {
	p := app.Printer
	ctx := cmd.Context()

	if len(args) > 0 && !flags.clean {
		return validationFailed(fmt.Sprintf("unexpected arguments %v (target keys go after --clean)", args))
	}

	cleaning := flags.clean && len(args) > 0
	if !flags.scan && !flags.interactive && !cleaning {
		if err := cmd.Help(); err != nil {
			return err
		}
		p.Blank()
		p.Dim("Subcommands: maintenance, categories, config")
		return nil
	}

	printScan(ctx, app, flags.risky)

	var selected []string
	switch {
	case flags.interactive:
		keys, err := selectTargets(ctx, app, flags.risky)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			p.Warning("No selection. Exiting.")
			return nil
		}
		selected = keys

	case cleaning:
		if err := validateKeys(app, args, flags.risky); err != nil {
			return err
		}
		selected = args
	}

	if len(selected) == 0 {
		return nil
	}

	p.Blank()
	p.Bold("You selected:")
	for _, k := range selected {
		d, _ := app.Registry.Lookup(k)
		note := ""
		if app.Registry.Dangerous(k) {
			note = "(dangerous: requires --force)"
		}
		p.Bullet(d.Description, note)
	}

	if err := checkDangerous(app, selected, flags.force); err != nil {
		return err
	}

	ok, err := ui.Confirm(p, app.Lines, "Proceed with cleanup?", app.Terminal)
	if errors.Is(err, terminal.InterruptErr) {
		ok, err = false, nil
	}
	if err != nil {
		return err
	}
	if !ok {
		p.Warning("Cancelled.")
		return nil
	}

	d := clean.New(app.Registry, app.Scanner, app.Env, app.Runner, p, app.Log)
	outcomes := d.PerformCleanup(ctx, selected, flags.dryRun)
	summarize(app, outcomes, flags.dryRun)
	return nil
}

// summarize prints the closing banner and a one-line tally.
func summarize(app *App, outcomes []clean.Outcome, dryRun bool) {
	p := app.Printer
	t := clean.Tally(outcomes)

	p.Blank()
	p.SuccessRule(ui.IconSuccess + " Done.")
	p.Blank()
	if dryRun {
		p.Dim(fmt.Sprintf("Dry run: %d path(s) and %d command(s) would be affected.", t[clean.ActionWouldDelete], t[clean.ActionWouldRun]))
	} else {
		p.Dim(fmt.Sprintf("Removed %d path(s), ran %d command(s), %d failure(s).", t[clean.ActionDeleted], t[clean.ActionRan], t[clean.ActionFailed]))
	}
	p.Dim("Tip: Reclaim space by emptying purgeable storage (if any) and rebooting.")
	p.Blank()

	for _, o := range outcomes {
		if o.Action == clean.ActionFailed {
			app.Log.Debug().Err(o.Err).Str("target", o.Key).Str("path", o.Path).Msg("cleanup failure")
		}
	}
}
