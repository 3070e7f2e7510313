package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"c6t/credentials"
)

var (
	agentConfigProfile  string
	agentConfigLanguage string
	agentConfigPath     string
)

var agentConfigCmd = &cobra.Command{
	Use:   "agent-config",
	Short: "Download the agent YAML configuration for a stored profile.",
	Long: `Fetch the default external agent configuration from TeamServer using the API
credentials of --profile and write it to --path.

The file contains agent credentials and is written with mode 0600. The
downloaded content must parse as YAML; otherwise nothing is written.`,
	Example: `
  # Java agent config for the default profile
  c6t agent-config

  # Node agent config from the "eval" profile into a custom path
  c6t agent-config --profile eval --language NODE --path ./config/contrast_security.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := profileAPIClient(cfg, agentConfigProfile)
		if err != nil {
			return err
		}

		fmt.Fprintln(stdout, "Getting agent config from TeamServer...")
		if err := downloadAgentConfig(cmd.Context(), client, agentConfigLanguage, agentConfigPath); err != nil {
			return err
		}
		printSuccess("Agent config file at %s is valid.", agentConfigPath)
		return nil
	},
}

type agentConfigFetcher interface {
	AgentConfig(ctx context.Context, language string) ([]byte, error)
}

func downloadAgentConfig(ctx context.Context, client agentConfigFetcher, language, path string) error {
	content, err := client.AgentConfig(ctx, language)
	if err != nil {
		return fmt.Errorf("fetch agent config: %w", err)
	}
	if err := validateAgentConfig(content); err != nil {
		return err
	}
	return writeAgentConfig(path, content)
}

// validateAgentConfig requires a non-empty YAML mapping.
func validateAgentConfig(content []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("agent config is not valid YAML: %w", err)
	}
	if len(doc) == 0 {
		return fmt.Errorf("agent config is empty")
	}
	return nil
}

func writeAgentConfig(path string, content []byte) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("agent config path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write agent config %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(agentConfigCmd)

	agentConfigCmd.Flags().StringVarP(&agentConfigProfile, "profile", "p", credentials.DefaultProfile, "Profile whose API credentials are used")
	agentConfigCmd.Flags().StringVarP(&agentConfigLanguage, "language", "l", "JAVA", "Agent language: JAVA, NODE, DOTNET_CORE, PYTHON, RUBY, GO, ...")
	agentConfigCmd.Flags().StringVar(&agentConfigPath, "path", "contrast_security.yaml", "Output file path")
}
