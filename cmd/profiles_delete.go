package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"c6t/credentials"
)

var profilesDeleteYes bool

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <profile>",
	Short: "Delete one stored profile.",
	Long: `Remove a profile from the credential store. Other profiles are kept.

Before deletion, an interactive prompt requires typing exactly "Y" unless --yes is given.`,
	Example: `
  # Delete the "old-eval" profile
  c6t profiles delete old-eval
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := credentials.NormalizeProfile(args[0])

		if !profilesDeleteYes {
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, profile)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
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

		deleted, err := store.Delete(profile)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: %s", credentials.ErrProfileNotFound, profile)
		}
		printSuccess("Deleted profile: %s", profile)
		return nil
	},
}

func confirmDeletePrompt(input io.Reader, output io.Writer, profile string) (bool, error) {
	return confirmTypedY(input, output, fmt.Sprintf("Delete profile %q?", profile))
}

// confirmTypedY asks question and accepts only an exact "Y".
func confirmTypedY(input io.Reader, output io.Writer, question string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "%s Type Y to confirm: ", question); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func init() {
	profilesCmd.AddCommand(profilesDeleteCmd)

	profilesDeleteCmd.Flags().BoolVarP(&profilesDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
}
