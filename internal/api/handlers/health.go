package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"speechbench/internal/app/engine"
)

// loadable is implemented by engines that lazily load a model.
type loadable interface {
	Loaded() bool
}

// HealthHandler serves liveness and engine discovery endpoints.
type HealthHandler struct {
	registry *engine.Registry
	version  string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(registry *engine.Registry, version string) *HealthHandler {
	return &HealthHandler{registry: registry, version: version}
}

// EngineStatus is one engine's slot in the health response.
type EngineStatus struct {
	Name      string `json:"name"`
	Local     bool   `json:"local"`
	Reachable bool   `json:"reachable"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	WhisperLoaded bool           `json:"whisper_loaded"`
	Engines       []EngineStatus `json:"engines"`
}

// Health handles GET /health. The process is healthy as soon as it can serve
// requests; whisper_loaded reflects lazy model state and engine reachability
// is advisory.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	whisperLoaded := false
	if eng, err := h.registry.Get(engine.NameWhisper); err == nil {
		if l, ok := eng.(loadable); ok {
			whisperLoaded = l.Loaded()
		}
	}

	names := h.registry.Names()
	statuses := make([]EngineStatus, 0, len(names))
	for _, name := range names {
		eng, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		statuses = append(statuses, EngineStatus{
			Name:      name,
			Local:     eng.Info().Local,
			Reachable: eng.HealthCheck(ctx) == nil,
		})
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		WhisperLoaded: whisperLoaded,
		Engines:       statuses,
	})
}

// Engines handles GET /engines: capability listing for clients that want to
// pick a comparison mode.
func (h *HealthHandler) Engines(c *gin.Context) {
	names := h.registry.Names()
	infos := make([]engine.Info, 0, len(names))
	for _, name := range names {
		if eng, err := h.registry.Get(name); err == nil {
			infos = append(infos, eng.Info())
		}
	}
	c.JSON(http.StatusOK, gin.H{"engines": infos})
}
