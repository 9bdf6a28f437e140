package render

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/speedwagon-io/satalert/internal/model"
)

const alertsSheet = "Alerts"

var xlsxHeader = []string{"Satellite ID", "Severity", "Component", "Timestamp"}

func renderXLSX(w io.Writer, alerts []model.Alert) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", alertsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, title := range xlsxHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(alertsSheet, cell, title)
	}

	for i, a := range alerts {
		row := i + 2
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("A%d", row), a.SatelliteID)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("B%d", row), string(a.Severity))
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("C%d", row), a.Component)
		_ = f.SetCellValue(alertsSheet, fmt.Sprintf("D%d", row), a.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
