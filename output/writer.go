package output

import (
	"fmt"
	"strconv"
	"strings"

	"c6t/credentials"
)

type Writer interface {
	Write(path string, records []credentials.Record) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var profileHeaders = []string{"Profile", "URL", "Username", "OrganizationID", "APIKey", "ServiceKey", "Superadmin"}

// profileRow renders one record with its keys masked.
func profileRow(record credentials.Record) []string {
	return []string{
		record.Profile,
		record.BaseURL,
		record.Username,
		record.OrganizationID,
		MaskSecret(record.APIKey),
		MaskSecret(record.ServiceKey),
		strconv.FormatBool(record.Superadmin),
	}
}

// MaskSecret keeps the last four characters of values longer than eight and
// hides everything else.
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
