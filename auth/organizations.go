package auth

import (
	"context"
	"strings"

	"c6t/prompt"
	"c6t/teamserver"
)

// chooseOrganization returns the single organization's id without prompting,
// or asks the user to pick one of several.
func chooseOrganization(ctx context.Context, p prompt.Prompter, orgs []teamserver.Organization) (string, error) {
	if len(orgs) == 1 {
		return orgs[0].ID, nil
	}

	options := make([]prompt.Option, 0, len(orgs))
	for _, org := range orgs {
		label := strings.TrimSpace(org.Name)
		if label == "" {
			label = org.ID
		}
		options = append(options, prompt.Option{Label: label, Value: org.ID})
	}
	return p.Select(ctx, "Select your organization:", options)
}

func firstSuperadminOrganization(orgs []teamserver.Organization) (teamserver.Organization, bool) {
	for _, org := range orgs {
		if org.IsSuperadmin && strings.TrimSpace(org.ID) != "" {
			return org, true
		}
	}
	return teamserver.Organization{}, false
}
