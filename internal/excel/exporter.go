package excel

import (
	"fmt"
	"io"

	"github.com/example/placementbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{
	"Started", "User ID", "Username", "Answers", "Score", "Total", "Level", "Top topics",
}

// ExportResults writes results as an .xlsx workbook to w
func ExportResults(records []models.ResultRecord, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			r.UserID,
			r.Username,
			r.JoinedAnswers(),
			r.Score,
			r.Total,
			r.Level,
			r.TopTopics,
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
