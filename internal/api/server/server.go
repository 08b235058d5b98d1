package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speechbench/internal/api/aeapchannel"
	"speechbench/internal/api/handlers"
	"speechbench/internal/api/middleware"
	"speechbench/internal/app/intake"
	"speechbench/internal/app/metrics"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// DefaultConfig returns the default server configuration. Write timeout is
// generous because a cold whisper model load plus a long file can take
// minutes.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		Version:      "dev",
	}
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	config Config
	router *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// New builds the router with the full middleware chain and route table.
func New(
	config Config,
	transcription *handlers.TranscriptionHandler,
	health *handlers.HealthHandler,
	channel *aeapchannel.Channel,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(bodyLimit())

	router.GET("/health", health.Health)
	router.GET("/engines", health.Engines)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.POST("/upload", transcription.Upload)
	router.POST("/transcribe", transcription.Transcribe)
	router.POST("/compare", transcription.Compare)

	router.GET("/aeap", channel.Handle)

	return &Server{
		config: config,
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
	}
}

// bodyLimit caps request bodies slightly above the upload limit so multipart
// framing overhead does not reject a file that is itself within bounds.
func bodyLimit() gin.HandlerFunc {
	const overhead = 1 << 20
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, intake.MaxUploadBytes+overhead)
		c.Next()
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening",
		zap.Int("port", s.config.Port),
		zap.String("version", s.config.Version))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
