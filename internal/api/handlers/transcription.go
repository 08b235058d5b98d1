package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speechbench/internal/api/dto"
	"speechbench/internal/api/middleware"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/intake"
	"speechbench/internal/app/metrics"
	"speechbench/internal/app/orchestrator"
)

// TranscriptionHandler serves the upload, transcribe and compare endpoints.
type TranscriptionHandler struct {
	store   *intake.Store
	orch    *orchestrator.Orchestrator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTranscriptionHandler creates the transcription handler.
func NewTranscriptionHandler(store *intake.Store, orch *orchestrator.Orchestrator, m *metrics.Metrics, logger *zap.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{store: store, orch: orch, metrics: m, logger: logger}
}

// saveUpload pulls the audio_file part into scratch storage.
func (h *TranscriptionHandler) saveUpload(c *gin.Context) (*intake.ScratchFile, error) {
	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		if strings.Contains(err.Error(), "too large") {
			return nil, engine.NewError(engine.CodeOversized, "",
				"upload exceeds the %d byte limit", intake.MaxUploadBytes)
		}
		return nil, engine.NewError(engine.CodeInputMissing, "",
			"no audio file provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, "",
			"open upload: %v", err)
	}
	defer src.Close()

	scratch, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return nil, err
	}
	h.metrics.ObserveUpload(scratch.Size)
	return scratch, nil
}

// Upload handles POST /upload: local whisper transcription only.
func (h *TranscriptionHandler) Upload(c *gin.Context) {
	var form dto.UploadForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	scratch, err := h.saveUpload(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer scratch.Cleanup(h.logger)

	result, err := h.orch.Transcribe(c.Request.Context(), engine.NameWhisper, scratch.Path, form.Language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUploadResponse(result))
}

// Transcribe handles POST /transcribe: cloud relay transcription only.
// Language defaults to en-US inside the engine; the relay does no detection.
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	var form dto.TranscribeForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	scratch, err := h.saveUpload(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer scratch.Cleanup(h.logger)

	result, err := h.orch.Transcribe(c.Request.Context(), engine.NameAEAP, scratch.Path, form.Language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTranscribeResponse(result))
}

// Compare handles POST /compare: dispatches to the engines the mode selects
// and reports per-engine outcomes. The request only fails as a whole when
// every selected engine failed.
func (h *TranscriptionHandler) Compare(c *gin.Context) {
	var form dto.CompareForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}
	mode, err := engine.ParseMode(form.Mode)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	scratch, err := h.saveUpload(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer scratch.Cleanup(h.logger)

	comparison := h.orch.Compare(c.Request.Context(), scratch.Path, form.Language, mode)
	response := dto.NewCompareResponse(comparison, h.wordLevel)

	status := http.StatusOK
	if !response.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, response)
}

func (h *TranscriptionHandler) wordLevel(name string) bool {
	eng, err := h.orch.Engines().Get(name)
	if err != nil {
		return false
	}
	return eng.Info().WordLevelSegments
}
