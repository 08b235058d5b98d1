package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"speechbench/internal/app/repository"
)

func TestToExcel(t *testing.T) {
	records := []*repository.Record{
		{
			ID:            1,
			CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			FileName:      "a.wav",
			Engine:        "whisper",
			Language:      "en",
			Text:          "hello there",
			AudioDuration: 3.5,
			ProcessingMs:  1200,
			Confidence:    0.0,
		},
		{
			ID:           2,
			CreatedAt:    time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC),
			FileName:     "a.wav",
			Engine:       "asterisk-aeap",
			ErrorCode:    "backend_timeout",
			ErrorMessage: "call exceeded 2m0s",
		},
	}

	outputPath := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, ToExcel(records, outputPath))

	file, err := xlsx.OpenFile(outputPath)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 3, "header plus two data rows")
	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "whisper", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "hello there", sheet.Rows[1].Cells[8].Value)
	assert.Equal(t, "call exceeded 2m0s", sheet.Rows[2].Cells[9].Value)
}

func TestToExcelEmptyHistory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, ToExcel(nil, outputPath))

	file, err := xlsx.OpenFile(outputPath)
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 1, "header only")
}
