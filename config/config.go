package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyTeamServerTimeout   = "teamserver.timeout"
	KeyTeamServerUserAgent = "teamserver.user_agent"
	KeyEnvironments        = "environments"
	KeyCredentialsBackend  = "credentials.backend"
	KeyCredentialsPath     = "credentials.path"
	KeyLogLevel            = "log.level"

	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "c6t"
)

type Config struct {
	TeamServer   TeamServerConfig  `mapstructure:"teamserver"`
	Environments []Environment     `mapstructure:"environments" validate:"dive"`
	Credentials  CredentialsConfig `mapstructure:"credentials"`
	Log          LogConfig         `mapstructure:"log"`
}

type TeamServerConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Environment is one TeamServer offered by the login picker.
type Environment struct {
	Name string `mapstructure:"name" validate:"required"`
	URL  string `mapstructure:"url" validate:"required,url"`
}

type CredentialsConfig struct {
	// Backend is "file" (JSON, the default) or "sqlite".
	Backend string `mapstructure:"backend" validate:"oneof=file sqlite"`
	// Path overrides the backend's default location under ~/.c6t.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// DefaultEnvironments are the hosted TeamServers.
func DefaultEnvironments() []Environment {
	return []Environment{
		{Name: "Free Trial", URL: "https://cs004.contrastsecurity.com/Contrast"},
		{Name: "Evaluation", URL: "https://eval.contrastsecurity.com/Contrast"},
	}
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return TemplateYAML(DefaultEnvironments(), "file")
}

// TemplateYAML renders the commented configuration template with the given
// login environments and credential backend.
func TemplateYAML(environments []Environment, backend string) string {
	var b strings.Builder
	b.WriteString("# c6t configuration\n")
	b.WriteString("teamserver:\n")
	fmt.Fprintf(&b, "  timeout: %s\n", DefaultTimeout)
	fmt.Fprintf(&b, "  user_agent: %s\n", strconv.Quote(DefaultUserAgent))
	b.WriteString("\n# Offered by \"c6t login\". Enterprise (custom URL) is always available.\n")
	if len(environments) == 0 {
		b.WriteString("environments: []\n")
	} else {
		b.WriteString("environments:\n")
		for _, env := range environments {
			fmt.Fprintf(&b, "  - name: %s\n", strconv.Quote(env.Name))
			fmt.Fprintf(&b, "    url: %s\n", strconv.Quote(env.URL))
		}
	}
	b.WriteString("\ncredentials:\n")
	fmt.Fprintf(&b, "  backend: %s # file | sqlite\n", strconv.Quote(backend))
	b.WriteString("  path: \"\"        # empty = ~/.c6t/credentials.json (or credentials.db)\n")
	b.WriteString("\nlog:\n")
	b.WriteString("  level: \"info\"\n")
	return b.String()
}

// ParseEnvironment parses a "Name=URL" pair.
func ParseEnvironment(raw string) (Environment, error) {
	name, url, ok := strings.Cut(raw, "=")
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if !ok || name == "" || url == "" {
		return Environment{}, fmt.Errorf("environment %q must look like Name=URL", raw)
	}
	return Environment{Name: name, URL: url}, nil
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Credentials.Backend = strings.ToLower(strings.TrimSpace(cfg.Credentials.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateEnvironments(cfg.Environments); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	environments := make([]map[string]any, 0, len(DefaultEnvironments()))
	for _, env := range DefaultEnvironments() {
		environments = append(environments, map[string]any{"name": env.Name, "url": env.URL})
	}

	v.SetDefault(KeyTeamServerTimeout, DefaultTimeout)
	v.SetDefault(KeyTeamServerUserAgent, DefaultUserAgent)
	v.SetDefault(KeyEnvironments, environments)
	v.SetDefault(KeyCredentialsBackend, "file")
	v.SetDefault(KeyCredentialsPath, "")
	v.SetDefault(KeyLogLevel, "info")
}

func validateEnvironments(environments []Environment) error {
	seen := make(map[string]struct{}, len(environments))
	for i, env := range environments {
		key := strings.ToLower(strings.TrimSpace(env.Name))
		if key == "enterprise" {
			return fmt.Errorf("validation failed: environments[%d].name %q is reserved for custom URLs", i, env.Name)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate environment name %q", env.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
