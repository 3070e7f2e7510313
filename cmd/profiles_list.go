package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"c6t/output"
)

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openCredentialStore(cfg, profilesStorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			printNotice("No profiles stored yet. Create one with: c6t login")
			return nil
		}

		fmt.Fprintln(stdout, output.ProfilesTable(records))
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
}
