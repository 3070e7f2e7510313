package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"c6t/output"
)

var (
	exportFormat string
	exportOutput string
)

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored profiles to CSV/Excel with masked keys.",
	Long: `Export every stored profile, one row per profile.

API keys and service keys are masked in the export. Output format can be selected
explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export to CSV
  c6t profiles export --output ./profiles.csv

  # Export to Excel
  c6t profiles export --output ./profiles.xlsx

  # Force Excel format independent of extension
  c6t profiles export --format excel --output ./profiles.out
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openCredentialStore(cfg, profilesStorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		if err := writer.Write(exportOutput, records); err != nil {
			return err
		}

		printSuccess("Export completed. Profiles: %d, Format: %s, File: %s", len(records), format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	profilesCmd.AddCommand(profilesExportCmd)

	profilesExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	profilesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = profilesExportCmd.MarkFlagRequired("output")
}

