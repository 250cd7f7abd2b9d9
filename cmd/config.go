package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macsysclean/internal/config"
)

func newConfigCmd(app func() *App) *cobra.Command {
	var initFlag, show, schema bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Create or show the settings file.

Settings are read from ~/.maccleanerrc, then
~/.config/mac-cleaner-cli/config.json. --init writes the defaults to
~/.maccleanerrc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			p := a.Printer

			switch {
			case initFlag:
				path, err := config.Init(a.Env)
				if err != nil {
					return err
				}
				p.Rule("Config")
				p.Blank()
				p.Check(true, "Created config at "+path)
				p.Blank()
				return nil

			case show:
				if !config.Exists(a.Env) {
					p.Warning("No config found. Run: mac-sysclean config --init")
					return nil
				}
				data, err := json.MarshalIndent(a.Settings, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to render config: %w", err)
				}
				p.Rule("Config")
				p.Blank()
				p.Plain(string(data))
				p.Blank()
				return nil

			case schema:
				data, err := config.Schema()
				if err != nil {
					return err
				}
				p.Plain(string(data))
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&initFlag, "init", false, "Create default config file")
	cmd.Flags().BoolVar(&show, "show", false, "Show current config")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the JSON schema of the config file")
	cmd.MarkFlagsMutuallyExclusive("init", "show", "schema")
	return cmd
}
