package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"c6t/credentials"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ProfilesTable renders records as a table with masked keys.
func ProfilesTable(records []credentials.Record) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, profileRow(record))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(profileHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// ProfileDetails renders a single record as a two-column key/value table.
func ProfileDetails(record credentials.Record) string {
	values := profileRow(record)
	rows := make([][]string, 0, len(values))
	for i, header := range profileHeaders {
		rows = append(rows, []string{header, values[i]})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
