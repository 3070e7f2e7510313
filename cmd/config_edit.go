package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"c6t/config"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active c6t config file in your editor ($VISUAL, then $EDITOR, then vi).

A missing config file is created from the template first. After the editor
exits, the file is validated and the resulting login environments and
credential store are shown. Switching credentials.backend or credentials.path
does not move stored profiles; a notice lists such changes.`,
	Example: `
  # Edit active config
  c6t config edit

  # Edit a specific file
  c6t --configFile ./team.yaml config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := createConfigFile(configPath, config.ExampleYAML())
		if err != nil {
			return err
		}
		if created {
			printNotice("No config file found. Created example config at: %s", configPath)
		}
		before := loadConfigFile(configPath)

		editorCommand, err := buildEditorCommand(resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR")), configPath)
		if err != nil {
			return err
		}
		editorCommand.Stdin = os.Stdin
		editorCommand.Stdout = os.Stdout
		editorCommand.Stderr = os.Stderr
		if err := editorCommand.Run(); err != nil {
			return fmt.Errorf("opening editor failed: %w", err)
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading edited config failed: %w", err)
		}
		after, err := config.ValidateYAMLContent(content)
		if err != nil {
			return fmt.Errorf("config validation failed in %s: %w", configPath, err)
		}

		printSuccess("Configuration saved and validated: %s", configPath)
		describeConfig(stdout, after)
		for _, change := range configChanges(before, after) {
			printNotice("%s", change)
		}
		return nil
	},
}

// loadConfigFile returns the validated config at path, or nil when it cannot
// be read or does not validate.
func loadConfigFile(path string) *config.Config {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return nil
	}
	return cfg
}

// configChanges lists the edits that affect where profiles live or which
// environments login offers. A nil before yields no changes.
func configChanges(before, after *config.Config) []string {
	if before == nil || after == nil {
		return nil
	}

	var changes []string
	if before.Credentials.Backend != after.Credentials.Backend {
		changes = append(changes, fmt.Sprintf("credentials.backend changed from %s to %s; profiles in %s are not migrated.",
			before.Credentials.Backend, after.Credentials.Backend, credentialStorePath(before)))
	} else if credentialStorePath(before) != credentialStorePath(after) {
		changes = append(changes, fmt.Sprintf("credentials.path changed; profiles in %s are not migrated.", credentialStorePath(before)))
	}

	previous := make(map[string]string, len(before.Environments))
	for _, env := range before.Environments {
		previous[env.Name] = env.URL
	}
	current := make(map[string]struct{}, len(after.Environments))
	for _, env := range after.Environments {
		current[env.Name] = struct{}{}
		url, existed := previous[env.Name]
		switch {
		case !existed:
			changes = append(changes, fmt.Sprintf("Environment added: %s (%s)", env.Name, env.URL))
		case url != env.URL:
			changes = append(changes, fmt.Sprintf("Environment changed: %s (%s)", env.Name, env.URL))
		}
	}
	for _, env := range before.Environments {
		if _, ok := current[env.Name]; !ok {
			changes = append(changes, fmt.Sprintf("Environment removed: %s", env.Name))
		}
	}
	return changes
}

func resolveConfigEditPath(configFileFlag, configFileUsed string) (string, error) {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag, nil
	}
	if strings.TrimSpace(configFileUsed) != "" {
		return configFileUsed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".c6t.yaml"), nil
}

func resolveEditorValue(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

func buildEditorCommand(editorValue, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(strings.TrimSpace(editorValue))
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}

	args := append(fields[1:], configPath)
	return exec.Command(fields[0], args...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
