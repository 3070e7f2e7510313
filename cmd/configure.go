package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"c6t/credentials"
	"c6t/prompt"
)

var configureProfile string

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Enter existing API credentials for a profile by hand.",
	Long: `Prompt for TeamServer URL, username, service key, API key, organization id and
superadmin status, then save them under --profile.

Use this when you already have API credentials (for example from the TeamServer
user settings page) or when your account signs in through SSO.`,
	Example: `
  # Save credentials to the "ci" profile
  c6t configure --profile ci
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		record, err := collectManualRecord(cmd.Context(), prompt.New(os.Stdin, stdout), configureProfile)
		if err != nil {
			return err
		}

		store, err := openCredentialStore(cfg, "")
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(record); err != nil {
			return err
		}
		printSuccess("Credentials saved to profile %q.", record.Profile)
		return nil
	},
}

func collectManualRecord(ctx context.Context, p prompt.Prompter, profile string) (credentials.Record, error) {
	record := credentials.Record{Profile: credentials.NormalizeProfile(profile)}

	fields := []struct {
		title  string
		ask    func(context.Context, string) (string, error)
		target *string
	}{
		{title: "Contrast TeamServer URL", ask: p.Input, target: &record.BaseURL},
		{title: "Contrast username", ask: p.Input, target: &record.Username},
		{title: "Contrast service key", ask: p.Secret, target: &record.ServiceKey},
		{title: "Contrast API key", ask: p.Secret, target: &record.APIKey},
		{title: "Contrast organization UUID", ask: p.Input, target: &record.OrganizationID},
	}
	for _, field := range fields {
		value, err := promptRequired(ctx, field.ask, field.title)
		if err != nil {
			return credentials.Record{}, err
		}
		*field.target = value
	}

	baseURL, err := normalizeLoginURL(record.BaseURL)
	if err != nil {
		return credentials.Record{}, err
	}
	record.BaseURL = baseURL

	superadmin, err := p.Confirm(ctx, "Contrast superadmin status")
	if err != nil {
		return credentials.Record{}, err
	}
	record.Superadmin = superadmin

	if err := record.Validate(); err != nil {
		return credentials.Record{}, err
	}
	return record, nil
}

func promptRequired(ctx context.Context, ask func(context.Context, string) (string, error), title string) (string, error) {
	for {
		value, err := ask(ctx, title)
		if err != nil {
			return "", err
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, nil
		}
		printNotice("Value must not be empty.")
	}
}

func init() {
	rootCmd.AddCommand(configureCmd)

	configureCmd.Flags().StringVarP(&configureProfile, "profile", "p", credentials.DefaultProfile, "Profile name to store the credentials under")
}
