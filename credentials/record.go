package credentials

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultProfile is used when no profile name is given.
const DefaultProfile = "default"

// Record is one persisted set of TeamServer API credentials.
type Record struct {
	Profile        string `validate:"required"`
	BaseURL        string `validate:"required,url"`
	Username       string `validate:"required"`
	APIKey         string `validate:"required"`
	ServiceKey     string `validate:"required"`
	OrganizationID string `validate:"required"`
	Superadmin     bool
}

var validate = validator.New()

// Validate reports whether every required field is populated.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid credentials for profile %q: %w", r.Profile, err)
	}
	return nil
}

// NormalizeProfile trims the name and falls back to DefaultProfile.
func NormalizeProfile(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultProfile
	}
	return name
}

// fileEntry is the on-disk shape of one profile in credentials.json.
type fileEntry struct {
	URL            string `json:"url"`
	UserName       string `json:"user_name"`
	APIKey         string `json:"api_key"`
	ServiceKey     string `json:"service_key"`
	OrganizationID string `json:"organization_id"`
	Superadmin     bool   `json:"superadmin"`
}

func entryFromRecord(r Record) fileEntry {
	return fileEntry{
		URL:            r.BaseURL,
		UserName:       r.Username,
		APIKey:         r.APIKey,
		ServiceKey:     r.ServiceKey,
		OrganizationID: r.OrganizationID,
		Superadmin:     r.Superadmin,
	}
}

func (e fileEntry) record(profile string) Record {
	return Record{
		Profile:        profile,
		BaseURL:        e.URL,
		Username:       e.UserName,
		APIKey:         e.APIKey,
		ServiceKey:     e.ServiceKey,
		OrganizationID: e.OrganizationID,
		Superadmin:     e.Superadmin,
	}
}
