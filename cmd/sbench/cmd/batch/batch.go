package batch

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speechbench/internal/app"
	"speechbench/internal/app/batch"
	"speechbench/internal/app/engine"
)

var (
	inputDir  string
	outputDir string
	language  string
	mode      string
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory of audio files to transcribe")
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to write transcripts into")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "language hint (e.g. en, en-US)")
	Cmd.Flags().StringVarP(&mode, "mode", "m", "local", "engines to run: local, cloud or both")

	Cmd.MarkFlagRequired("input")
	Cmd.MarkFlagRequired("output")
}

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Transcribe every audio file in a directory",
	Long: `Transcribe every audio file in a directory.

One transcript file is written per input file and engine. Results are
recorded to the history store; files already transcribed are served from
the result cache when one is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, err := engine.ParseMode(mode)
		if err != nil {
			return err
		}

		application, err := app.InitializeApplication(zap.L())
		if err != nil {
			return err
		}
		defer application.Close()

		runner := batch.NewRunner(
			application.Orchestrator,
			application.History,
			application.Cache,
			application.Archive,
			application.Logger,
		)
		summary, err := runner.Run(cmd.Context(), inputDir, outputDir, language, selected)
		if err != nil {
			return err
		}

		fmt.Printf("batch finished: %d files, %d succeeded, %d failed, %d cache hits\n",
			summary.Files, summary.Succeeded, summary.Failed, summary.CacheHits)
		return nil
	},
}
