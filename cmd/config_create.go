package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"c6t/config"
	"c6t/credentials"
)

var (
	configCreateBackend      string
	configCreateEnvironments []string
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file with the hosted TeamServer environments.",
	Long: `Create a new configuration file. The login picker is seeded with the Free Trial
and Evaluation environments; --environment adds on-premises TeamServers.

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.c6t.yaml
  c6t config create

  # Add an on-premises TeamServer and keep profiles in SQLite
  c6t config create --environment "Lab=https://teamserver.example.com/Contrast" --backend sqlite
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreateBackend, configCreateEnvironments)
	},
}

func saveDefaultConfig(backend string, extraEnvironments []string) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	environments := config.DefaultEnvironments()
	for _, raw := range extraEnvironments {
		env, err := config.ParseEnvironment(raw)
		if err != nil {
			return err
		}
		environments = append(environments, env)
	}

	content := config.TemplateYAML(environments, backend)
	cfg, err := config.ValidateYAMLContent([]byte(content))
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	created, err := createConfigFile(configPath, content)
	if err != nil {
		return err
	}
	if !created {
		printNotice("Config file already exists at: %s", configPath)
		return nil
	}

	printSuccess("New config file created at: %s", configPath)
	describeConfig(stdout, cfg)
	return nil
}

// createConfigFile writes content to path unless the file already exists.
func createConfigFile(path, content string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("creating config file failed: %w", err)
	}
	return true, nil
}

// describeConfig prints what login and the profile commands will use.
func describeConfig(w io.Writer, cfg *config.Config) {
	names := make([]string, 0, len(cfg.Environments)+1)
	for _, env := range cfg.Environments {
		names = append(names, env.Name)
	}
	names = append(names, enterpriseEnvironment)
	fmt.Fprintf(w, "Login environments: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Credential store: %s (%s)\n", cfg.Credentials.Backend, credentialStorePath(cfg))
}

func credentialStorePath(cfg *config.Config) string {
	if cfg.Credentials.Path != "" {
		return cfg.Credentials.Path
	}
	path, err := credentials.DefaultPath(cfg.Credentials.Backend)
	if err != nil {
		return "default location"
	}
	return path
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&configCreateBackend, "backend", "file", "Credential store backend: file|sqlite")
	configCreateCmd.Flags().StringArrayVar(&configCreateEnvironments, "environment", nil, "Extra login environment as Name=URL (repeatable)")
}
