package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speechbench/cmd/sbench/cmd/version"
	"speechbench/internal/api/aeapchannel"
	"speechbench/internal/api/handlers"
	"speechbench/internal/api/server"
	"speechbench/internal/app"
	"speechbench/internal/config"
)

var port int

func init() {
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (default 8080, or PORT)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP comparison API and the relay side channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.L()

		application, err := app.InitializeApplication(logger)
		if err != nil {
			return err
		}
		defer application.Close()

		cfg := server.DefaultConfig()
		cfg.Version = version.Version
		if port > 0 {
			cfg.Port = port
		} else {
			cfg.Port = config.GetenvInt("PORT", cfg.Port)
		}

		srv := server.New(
			cfg,
			handlers.NewTranscriptionHandler(application.Intake, application.Orchestrator, application.Metrics, logger),
			handlers.NewHealthHandler(application.Registry, cfg.Version),
			aeapchannel.NewChannel(logger),
			application.Metrics,
			logger,
		)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logger.Info("shutting down on signal", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
