package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"c6t/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Built-in
defaults are shown when no config file exists.`,
	Example: `
  # Show active configuration
  c6t config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Fprintln(stdout, "Config file loaded from:", configPath)
		} else {
			fmt.Fprintln(stdout, "No config file found, using defaults.")
		}
		writeConfigValues(stdout, cfg)
		return nil
	},
}

func writeConfigValues(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "teamserver.timeout: %s\n", cfg.TeamServer.Timeout)
	fmt.Fprintf(w, "teamserver.user_agent: %s\n", cfg.TeamServer.UserAgent)
	fmt.Fprintf(w, "environments: %d\n", len(cfg.Environments))
	for i, env := range cfg.Environments {
		fmt.Fprintf(w, "environments[%d].name: %s\n", i, env.Name)
		fmt.Fprintf(w, "environments[%d].url: %s\n", i, env.URL)
	}
	fmt.Fprintf(w, "credentials.backend: %s\n", cfg.Credentials.Backend)
	path := cfg.Credentials.Path
	if path == "" {
		path = "(default)"
	}
	fmt.Fprintf(w, "credentials.path: %s\n", path)
	fmt.Fprintf(w, "log.level: %s\n", cfg.Log.Level)
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
