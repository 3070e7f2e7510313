package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"c6t/credentials"
)

const profilesSheet = "Profiles"

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, records []credentials.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), profilesSheet); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	for col, header := range profileHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(profilesSheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, record := range records {
		row := i + 2
		for col, value := range profileRow(record) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(profilesSheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
