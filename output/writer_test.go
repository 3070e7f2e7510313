package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"c6t/credentials"
)

func sampleRecords() []credentials.Record {
	return []credentials.Record{
		{
			Profile:        "default",
			BaseURL:        "https://ts.example.com/Contrast",
			Username:       "alice@example.com",
			APIKey:         "ABCDEFGHIJKL1234",
			ServiceKey:     "SERVICEKEY9876",
			OrganizationID: "org-1",
		},
		{
			Profile:        "prod",
			BaseURL:        "https://eval.contrastsecurity.com/Contrast",
			Username:       "bob@example.com",
			APIKey:         "short",
			ServiceKey:     "SERVICEKEY5555",
			OrganizationID: "org-2",
			Superadmin:     true,
		},
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"12345678":         "****",
		"ABCDEFGHIJKL1234": "****1234",
	}
	for in, want := range tests {
		if got := MaskSecret(in); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"csv", " CSV ", "excel", "xlsx"} {
		if _, err := WriterForFormat(format); err != nil {
			t.Fatalf("format %q: unexpected error: %v", format, err)
		}
	}
	if _, err := WriterForFormat("json"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestCSVWriterMasksSecrets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.csv")
	if err := (&CSVWriter{}).Write(path, sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Profile,URL,Username,OrganizationID,APIKey,ServiceKey,Superadmin" {
		t.Fatalf("unexpected headers: %v", rows[0])
	}
	if rows[1][4] != "****1234" || rows[1][5] != "****9876" {
		t.Fatalf("secrets not masked: %v", rows[1])
	}
	if rows[2][6] != "true" {
		t.Fatalf("unexpected superadmin column: %v", rows[2])
	}
}

func TestExcelWriterMasksSecrets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.xlsx")
	if err := (&ExcelWriter{}).Write(path, sampleRecords()); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(profilesSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "default" || rows[1][4] != "****1234" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
}

func TestProfilesTable(t *testing.T) {
	t.Parallel()

	rendered := ProfilesTable(sampleRecords())
	for _, want := range []string{"Profile", "default", "prod", "****1234", "org-2"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "ABCDEFGHIJKL1234") {
		t.Fatalf("table leaks API key:\n%s", rendered)
	}
}

func TestProfileDetails(t *testing.T) {
	t.Parallel()

	rendered := ProfileDetails(sampleRecords()[0])
	for _, want := range []string{"Username", "alice@example.com", "****9876"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("details missing %q:\n%s", want, rendered)
		}
	}
}
