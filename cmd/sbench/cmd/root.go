package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speechbench/cmd/sbench/cmd/batch"
	"speechbench/cmd/sbench/cmd/export"
	"speechbench/cmd/sbench/cmd/serve"
	"speechbench/cmd/sbench/cmd/transcribe"
	"speechbench/cmd/sbench/cmd/version"
	"speechbench/internal/config"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sbench",
	Short: "Compare speech-to-text engines on the same audio",
	Long: `Compare speech-to-text engines on the same audio.
- serve exposes the HTTP comparison API and the telephony relay channel
- transcribe and batch run files from the command line
- results are recorded to a local history store and can be exported`,
	TraverseChildren: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := buildLogger(Verbose)
		zap.ReplaceGlobals(logger)
		config.LoadEnv(logger)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(batch.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}
