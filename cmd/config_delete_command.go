package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteYes bool

var (
	configDeletePromptInput  io.Reader = os.Stdin
	configDeletePromptOutput io.Writer = os.Stdout
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by c6t.

Stored credential profiles are kept; the command tells you where they are.
Use "c6t profiles delete" to remove profiles. Asks for "Y" unless --yes is given.`,
	Example: `
  # Delete active config
  c6t config delete

  # Delete config at a custom path without asking
  c6t --configFile ./custom-c6t.yaml config delete --yes
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteConfigFile(viper.ConfigFileUsed(), configDeleteYes, configDeletePromptInput, configDeletePromptOutput)
	},
}

func deleteConfigFile(configPath string, skipConfirm bool, input io.Reader, output io.Writer) error {
	if configPath == "" {
		return fmt.Errorf("no configuration file found")
	}

	if !skipConfirm {
		confirmed, err := confirmTypedY(input, output, fmt.Sprintf("Delete configuration file %s?", configPath))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}
	}

	// Read before removal for the notice below.
	cfg := loadConfigFile(configPath)

	if err := os.Remove(configPath); err != nil {
		return fmt.Errorf("error deleting configuration file: %w", err)
	}

	printSuccess("Configuration file successfully deleted: %s", configPath)
	if cfg != nil {
		printNotice("Credential profiles in %s were kept.", credentialStorePath(cfg))
	}
	return nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().BoolVarP(&configDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
}
