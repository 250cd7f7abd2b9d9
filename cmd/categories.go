package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macsysclean/internal/ui"
)

func newCategoriesCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List all available cleanup targets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := app()
			p := a.Printer

			p.Rule(ui.IconBroom + " Mac Cleaner CLI - Categories")
			p.Blank()
			p.Info("Available categories (targets):")
			p.Blank()

			keys := a.Registry.Keys()
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				d, err := a.Registry.Lookup(k)
				if err != nil {
					continue
				}
				note := ""
				switch {
				case d.Dangerous:
					note = "(dangerous: requires --force)"
				case d.Risky:
					note = "(risky: requires --risky)"
				}
				rows = append(rows, []string{k, d.Description, note})
			}
			p.Table([]ui.Column{
				{Title: "Key", Style: ui.StyleAccent},
				{Title: "Description"},
				{Title: "Note", Style: ui.StyleWarn},
			}, rows, nil)
			p.Blank()
		},
	}
}
