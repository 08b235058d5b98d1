package export

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"speechbench/internal/app/export"
	"speechbench/internal/app/repository"
	"speechbench/internal/config"
)

var (
	engineName     string
	outputFilePath string
	limit          int
)

func init() {
	Cmd.Flags().StringVarP(&engineName, "engine", "e", "", "only export rows for this engine")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "path of the xlsx file to write")
	Cmd.Flags().IntVarP(&limit, "limit", "n", 1000, "maximum number of rows to export")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transcription history to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := config.DataDir()
		if err != nil {
			return err
		}
		history, err := repository.NewHistoryDAO(
			config.Getenv("SPEECHBENCH_DB_TYPE", "sqlite"),
			filepath.Join(dataDir, "history.db"),
			config.Getenv("SPEECHBENCH_POSTGRES_DSN", ""),
		)
		if err != nil {
			return err
		}
		defer history.Close()

		var records []*repository.Record
		if engineName != "" {
			records, err = history.ByEngine(engineName, limit)
		} else {
			records, err = history.Recent(limit)
		}
		if err != nil {
			return err
		}

		if err := export.ToExcel(records, outputFilePath); err != nil {
			return err
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
