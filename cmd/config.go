package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage c6t configuration file values.",
	Long: `Create, edit, display, and delete the c6t configuration file.

The configuration stores application-wide values:
- teamserver.timeout / teamserver.user_agent
- environments[].name / url (offered by "c6t login")
- credentials.backend (file|sqlite) / credentials.path
- log.level

Every key can also be set through the environment, e.g. C6T_LOG_LEVEL=debug.`,
	Example: `
  # Create default config in $HOME/.c6t.yaml
  c6t config create

  # Show active config and source file
  c6t config show

  # Open active config in editor (creates example if missing)
  c6t config edit

  # Delete active config file
  c6t config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
