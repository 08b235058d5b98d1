package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speechbench/internal/app"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/engine/whisper"
	"speechbench/internal/app/orchestrator"
	"speechbench/internal/app/repository"
)

var (
	language   string
	mode       string
	engineName string
	modelSize  string
	asJSON     bool
)

func init() {
	Cmd.Flags().StringVarP(&language, "language", "l", "", "language hint (e.g. en, en-US)")
	Cmd.Flags().StringVarP(&mode, "mode", "m", "both", "engines to run: local, cloud or both")
	Cmd.Flags().StringVarP(&engineName, "engine", "e", "", "run a single engine by name (overrides --mode)")
	Cmd.Flags().StringVar(&modelSize, "model", "", "whisper model size: tiny, base, small, medium or large")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe one audio file and print each engine's result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audioPath := args[0]
		if _, err := os.Stat(audioPath); err != nil {
			return fmt.Errorf("audio file: %w", err)
		}

		if modelSize != "" {
			if !lo.Contains(whisper.ModelSizes, modelSize) {
				return fmt.Errorf("unknown model size %q, must be one of %v", modelSize, whisper.ModelSizes)
			}
			os.Setenv("WHISPER_MODEL_SIZE", modelSize)
		}

		selected, err := engine.ParseMode(mode)
		if err != nil {
			return err
		}

		application, err := app.InitializeApplication(zap.L())
		if err != nil {
			return err
		}
		defer application.Close()

		var comparison orchestrator.ComparisonResult
		if engineName != "" {
			outcome := &orchestrator.Outcome{}
			result, err := application.Orchestrator.Transcribe(cmd.Context(), engineName, audioPath, language)
			if err != nil {
				outcome.Err = engine.AsError(err, engineName)
			} else {
				outcome.Result = result
			}
			comparison = orchestrator.ComparisonResult{engineName: outcome}
		} else {
			comparison = application.Orchestrator.Compare(cmd.Context(), audioPath, language, selected)
		}
		recordOutcomes(application, audioPath, comparison)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(comparison)
		}

		for name, outcome := range comparison {
			fmt.Printf("=== %s ===\n", name)
			if outcome.Err != nil {
				fmt.Printf("error [%s]: %s\n\n", outcome.Err.Code, outcome.Err.Message)
				continue
			}
			fmt.Printf("%s\n", outcome.Result.Text)
			fmt.Printf("(language=%s duration=%.1fs processing=%s)\n\n",
				outcome.Result.Language,
				outcome.Result.AudioDuration,
				outcome.Result.ProcessingTime)
		}
		if comparison.AllFailed() {
			return fmt.Errorf("every engine failed")
		}
		return nil
	},
}

func recordOutcomes(application *app.Application, audioPath string, comparison orchestrator.ComparisonResult) {
	fileName := filepath.Base(audioPath)
	for _, outcome := range comparison {
		var rec *repository.Record
		if outcome.Err != nil {
			rec = repository.RecordFromError(fileName, outcome.Err)
		} else {
			rec = repository.RecordFromResult(fileName, outcome.Result)
		}
		if err := application.History.Save(rec); err != nil {
			application.Logger.Warn("failed to record history", zap.Error(err))
		}
	}
}
