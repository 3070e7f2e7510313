package cmd

import (
	"fmt"
	"strings"

	"c6t/config"
	"c6t/credentials"
	"c6t/teamserver"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openCredentialStore opens the configured backend. A non-empty override
// path wins over credentials.path from the config file.
func openCredentialStore(cfg *config.Config, overridePath string) (credentials.Store, error) {
	path := cfg.Credentials.Path
	if strings.TrimSpace(overridePath) != "" {
		path = overridePath
	}

	store, err := credentials.Open(cfg.Credentials.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	logger.Debug("credential store opened", "backend", cfg.Credentials.Backend, "path", path)
	return store, nil
}

// profileAPIClient builds an API-key client from a stored profile.
func profileAPIClient(cfg *config.Config, profile string) (*teamserver.HTTPAPIClient, error) {
	store, err := openCredentialStore(cfg, "")
	if err != nil {
		return nil, err
	}
	defer store.Close()

	record, err := store.Load(credentials.NormalizeProfile(profile))
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return teamserver.NewAPIClient(teamserver.APIClientConfig{
		BaseURL:        record.BaseURL,
		Username:       record.Username,
		APIKey:         record.APIKey,
		ServiceKey:     record.ServiceKey,
		OrganizationID: record.OrganizationID,
		UserAgent:      cfg.TeamServer.UserAgent,
		Timeout:        cfg.TeamServer.Timeout,
	})
}
