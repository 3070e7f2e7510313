package cmd

import "github.com/spf13/cobra"

var profilesStorePath string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect and manage stored credential profiles.",
	Long: `List, show, delete and export the credential profiles written by "login" and
"configure". API keys and service keys are always masked.`,
	Example: `
  # List all profiles
  c6t profiles list

  # Show one profile
  c6t profiles show default

  # Delete a profile (asks for confirmation)
  c6t profiles delete old-eval

  # Export profiles to Excel
  c6t profiles export --output ./profiles.xlsx
`,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.PersistentFlags().StringVar(&profilesStorePath, "store", "", "Credential store path (default: credentials.path from config, then ~/.c6t/credentials.json)")
}
