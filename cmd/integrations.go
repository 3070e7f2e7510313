package cmd

import (
	"github.com/spf13/cobra"

	"c6t/credentials"
)

var integrationsProfile string

var integrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "Integrations with other tools.",
	Long: `Connect TeamServer with third-party tools using the API credentials of a
stored profile (see "c6t login").`,
}

var scwCmd = &cobra.Command{
	Use:   "scw",
	Short: "Secure Code Warrior training links in vulnerability references.",
	Long: `Add or remove Secure Code Warrior videos and exercises in the references of
every Assess rule of the profile's organization.`,
	Example: `
  # Add training links for the default profile
  c6t integrations scw create

  # Restore the default references for the "eval" profile
  c6t integrations scw delete --profile eval
`,
}

func init() {
	rootCmd.AddCommand(integrationsCmd)
	integrationsCmd.AddCommand(scwCmd)

	integrationsCmd.PersistentFlags().StringVarP(&integrationsProfile, "profile", "p", credentials.DefaultProfile, "Profile whose API credentials are used")
}
