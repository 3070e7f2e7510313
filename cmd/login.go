package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"c6t/auth"
	"c6t/config"
	"c6t/credentials"
	"c6t/prompt"
	"c6t/teamserver"
)

const enterpriseEnvironment = "Enterprise"

var (
	loginProfile            string
	loginURL                string
	loginTimeout            time.Duration
	loginInsecureSkipVerify bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your TeamServer UI credentials and store API credentials.",
	Long: `Interactive TeamServer login.

The login runs these steps in order and stops at the first failure:
  1. open a session and ask for your email address
  2. stop if the address belongs to an SSO account (use your identity provider)
  3. check that the TeamServer license is active
  4. ask for your password and, when enabled, a two-step verification code
  5. superadmins may switch into superadmin mode
  6. select an organization (skipped when you belong to exactly one)
  7. fetch your API key and service key and save them under --profile

Nothing is written unless every step succeeds. Logging in again with the same
profile replaces its stored credentials.`,
	Example: `
  # Pick an environment interactively and save to the default profile
  c6t login

  # Skip the environment picker
  c6t login --url https://eval.contrastsecurity.com/Contrast --profile eval
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		prompter := prompt.New(os.Stdin, stdout)

		baseURL, err := resolveLoginURL(ctx, prompter, cfg.Environments, loginURL)
		if err != nil {
			return err
		}

		timeout := cfg.TeamServer.Timeout
		if loginTimeout > 0 {
			timeout = loginTimeout
		}
		transport, err := teamserver.NewTransport(teamserver.TransportConfig{
			BaseURL:            baseURL,
			UserAgent:          cfg.TeamServer.UserAgent,
			Timeout:            timeout,
			InsecureSkipVerify: loginInsecureSkipVerify,
		})
		if err != nil {
			return err
		}

		store, err := openCredentialStore(cfg, "")
		if err != nil {
			return err
		}
		defer store.Close()

		orchestrator, err := auth.New(auth.Config{
			BaseURL:   baseURL,
			Transport: transport,
			Prompter:  prompter,
			Store:     store,
			Logger:    logger,
			Out:       stdout,
		})
		if err != nil {
			return err
		}

		record, err := orchestrator.Run(ctx, loginProfile)
		if err != nil {
			return err
		}

		printSuccess("Credentials saved to profile %q (organization %s).", record.Profile, record.OrganizationID)
		return nil
	},
}

// resolveLoginURL returns the --url override or asks the user to choose one
// of the configured environments. "Enterprise" asks for a custom URL.
func resolveLoginURL(ctx context.Context, p prompt.Prompter, environments []config.Environment, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return normalizeLoginURL(override)
	}

	options := make([]prompt.Option, 0, len(environments)+1)
	for _, env := range environments {
		options = append(options, prompt.Option{Label: env.Name, Value: env.URL})
	}
	options = append(options, prompt.Option{Label: enterpriseEnvironment, Value: enterpriseEnvironment})

	choice, err := p.Select(ctx, "Select your Contrast TeamServer Environment:", options)
	if err != nil {
		return "", err
	}
	if choice != enterpriseEnvironment {
		return normalizeLoginURL(choice)
	}

	for {
		custom, err := p.Input(ctx, "Enter your Contrast TeamServer URL")
		if err != nil {
			return "", err
		}
		baseURL, err := normalizeLoginURL(custom)
		if err == nil {
			return baseURL, nil
		}
		printNotice("%v", err)
	}
}

func normalizeLoginURL(raw string) (string, error) {
	baseURL, _, err := teamserver.NormalizeBaseURL(raw)
	if err != nil {
		return "", fmt.Errorf("TeamServer URL: %w", err)
	}
	return baseURL, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginProfile, "profile", "p", credentials.DefaultProfile, "Profile name to store the credentials under")
	loginCmd.Flags().StringVar(&loginURL, "url", "", "TeamServer URL, e.g. https://teamserver.example.com/Contrast (skips the environment picker)")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 0, "Per-request timeout (default: teamserver.timeout from config)")
	loginCmd.Flags().BoolVar(&loginInsecureSkipVerify, "insecure-skip-verify", false, "Skip TLS certificate verification (self-signed on-premises TeamServers only)")
}
