package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"c6t/credentials"
	"c6t/output"
)

var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show one stored profile (default: \"default\").",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := credentials.DefaultProfile
		if len(args) == 1 {
			profile = credentials.NormalizeProfile(args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openCredentialStore(cfg, profilesStorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.Load(profile)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, output.ProfileDetails(record))
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesShowCmd)
}
