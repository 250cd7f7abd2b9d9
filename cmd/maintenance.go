package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macsysclean/internal/maintenance"
)

func newMaintenanceCmd(app func() *App) *cobra.Command {
	var dns, purgeable bool

	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run maintenance tasks",
		Long:  "Flush the DNS cache and free purgeable space. Both usually need sudo.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			p := a.Printer
			if !dns && !purgeable {
				p.Warning("No maintenance tasks specified.")
				p.Dim("Use --dns to flush DNS cache or --purgeable to free purgeable space.")
				return nil
			}

			svc := maintenance.New(a.Runner, a.Log)
			ctx := cmd.Context()

			p.Blank()
			p.Rule("Maintenance")
			p.Blank()
			if dns {
				msg, err := svc.FlushDNS(ctx)
				if err != nil {
					p.Check(false, "DNS flush: "+err.Error())
				} else {
					p.Check(true, msg)
				}
			}
			if purgeable {
				msg, err := svc.FreePurgeable(ctx)
				if err != nil {
					p.Check(false, "Purgeable: "+err.Error())
				} else {
					p.Check(true, msg)
				}
			}
			p.Blank()
			return nil
		},
	}

	cmd.Flags().BoolVar(&dns, "dns", false, "Flush DNS cache")
	cmd.Flags().BoolVar(&purgeable, "purgeable", false, "Free purgeable space")
	return cmd
}
