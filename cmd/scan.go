package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lakshaymaurya-felt/macsysclean/internal/core"
	"github.com/lakshaymaurya-felt/macsysclean/internal/logging"
	"github.com/lakshaymaurya-felt/macsysclean/internal/target"
	"github.com/lakshaymaurya-felt/macsysclean/internal/ui"
)

// scanRow is one measured target.
type scanRow struct {
	key   string
	label string
	size  string
	bytes int64
}

// measure sizes every visible target in registry order.
func measure(ctx context.Context, app *App, risky bool) []scanRow {
	keys := app.Scanner.VisibleTargets(risky, app.Settings.ExcludeTargets)
	rows := make([]scanRow, 0, len(keys))
	for _, k := range keys {
		d, err := app.Registry.Lookup(k)
		if err != nil {
			continue
		}
		size, bytes := formatTargetSize(ctx, app, k)
		rows = append(rows, scanRow{key: k, label: d.Description, size: size, bytes: bytes})
	}
	return rows
}

// formatTargetSize renders e.g. "2.1 GB (45 items)", or "3 snapshot(s)" for
// Time Machine. Absent and failed measurements both show as zero.
func formatTargetSize(ctx context.Context, app *App, key string) (string, int64) {
	if key == target.KeyTimeMachineSnapshots {
		count, _ := app.Scanner.CountOf(ctx, key)
		return fmt.Sprintf("%d snapshot(s)", count.N), 0
	}

	size, _ := app.Scanner.SizeOf(ctx, key)
	if size.Err != nil {
		logging.FromContext(ctx).Debug().Err(size.Err).Str("target", key).Str("status", size.Status.String()).Msg("size unavailable")
	}
	s := core.FormatSize(size.Bytes)

	count, _ := app.Scanner.CountOf(ctx, key)
	if count.Valid && count.N > 0 {
		s = fmt.Sprintf("%s (%d items)", s, count.N)
	}
	return s, size.Bytes
}

// printScan measures every visible target and prints the results table.
func printScan(ctx context.Context, app *App, risky bool) {
	p := app.Printer

	p.Rule(ui.IconBroom + " Mac Cleaner CLI")
	p.Blank()
	p.Info("Scan results (sizes are approximate):")
	p.Blank()

	host := core.CollectHostSummary(ctx)
	if host.FreeMemory > 0 {
		p.Dim("  Approximate free memory (incl. inactive/speculative): " + core.FormatSize(int64(host.FreeMemory)))
	}
	if host.DiskTotal > 0 {
		p.Dim(fmt.Sprintf("  Free disk on %s: %s of %s", host.DiskMountPath,
			core.FormatSize(int64(host.DiskFree)), core.FormatSize(int64(host.DiskTotal))))
	}

	rows := measure(ctx, app, risky)
	cells := make([][]string, len(rows))
	var total int64
	for i, r := range rows {
		cells[i] = []string{r.label, r.size}
		total += r.bytes
	}

	large := int64(app.Settings.LargeFilesMB) << 20
	p.Table(
		[]ui.Column{
			{Title: "Category"},
			{Title: "Size", Align: ui.AlignRight, Style: ui.StyleWarn},
		},
		cells,
		func(row int) bool { return row >= 0 && row < len(rows) && rows[row].bytes >= large },
	)

	p.Blank()
	p.Check(true, "Total (approx.): "+core.FormatSize(total)+" that can be cleaned")

	if !risky {
		excluded := app.Settings.Excluded()
		var hidden []string
		for _, k := range app.Registry.RiskyKeys() {
			if !excluded[k] {
				hidden = append(hidden, k)
			}
		}
		if len(hidden) > 0 {
			p.Blank()
			p.Warning("  Risky (use --risky to include): " + strings.Join(hidden, ", "))
		}
	}

	if w := app.Scanner.Warnings(); len(w) > 0 {
		for _, msg := range w {
			app.Log.Debug().Msg(msg)
		}
		p.Dim(fmt.Sprintf("  %d path(s) could not be read (run with --debug for details)", len(w)))
	}
	p.Blank()
}

// selectTargets lets the user pick targets: a checklist on a terminal,
// otherwise a numbered prompt.
func selectTargets(ctx context.Context, app *App, risky bool) ([]string, error) {
	rows := measure(ctx, app, risky)
	choices := make([]ui.Choice, len(rows))
	for i, r := range rows {
		choices[i] = ui.Choice{Key: r.key, Label: r.label + " - " + r.size}
	}

	if app.Terminal {
		return ui.RunSelector(choices, app.In, app.Printer.Writer())
	}

	plain := make([]ui.Choice, len(rows))
	for i, r := range rows {
		plain[i] = ui.Choice{Key: r.key, Label: r.label}
	}
	return ui.PromptChoices(app.Printer, app.Lines, plain), nil
}
