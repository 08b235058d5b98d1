// Package export writes transcription history to spreadsheet files for
// side-by-side review of engine output.
package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"speechbench/internal/app/repository"
)

// ToExcel writes the history rows to an xlsx workbook at outputPath.
func ToExcel(records []*repository.Record, outputPath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Recorded At"
	headerRow.AddCell().Value = "File"
	headerRow.AddCell().Value = "Engine"
	headerRow.AddCell().Value = "Language"
	headerRow.AddCell().Value = "Audio Duration"
	headerRow.AddCell().Value = "Processing (ms)"
	headerRow.AddCell().Value = "Confidence"
	headerRow.AddCell().Value = "Transcription"
	headerRow.AddCell().Value = "Error"

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(rec.ID)
		row.AddCell().Value = rec.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = rec.FileName
		row.AddCell().Value = rec.Engine
		row.AddCell().Value = rec.Language
		row.AddCell().Value = fmt.Sprintf("%.2f", rec.AudioDuration)
		row.AddCell().Value = fmt.Sprint(rec.ProcessingMs)
		row.AddCell().Value = fmt.Sprintf("%.3f", rec.Confidence)
		row.AddCell().Value = rec.Text
		row.AddCell().Value = rec.ErrorMessage
	}

	if err := file.Save(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
