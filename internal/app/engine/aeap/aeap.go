package aeap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

// DefaultLanguage is used when no hint is given; the relay performs no
// language detection.
const DefaultLanguage = "en-US"

// Config configures the cloud relay client.
type Config struct {
	// BaseURL of the AEAP speech relay, e.g. "http://localhost:3001".
	BaseURL string
	// Timeout for a single HTTP attempt.
	Timeout time.Duration
	// MaxAttempts bounds the retry loop around the network call. Retries
	// apply only to retryable failures (connection errors, 5xx).
	MaxAttempts int
	// Backoff is the initial retry delay, doubled per attempt.
	Backoff time.Duration
}

// Client is the cloud transcription engine. It forwards canonical PCM audio
// to the AEAP speech relay and reshapes its JSON response. The underlying
// http.Client is long-lived and shared across requests.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// New creates an AEAP relay client.
func New(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:3001"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = 500 * time.Millisecond
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// relayResponse is the JSON the AEAP relay returns.
type relayResponse struct {
	Success    bool    `json:"success"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	Segments   []struct {
		Word       string  `json:"word"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Confidence float64 `json:"confidence"`
	} `json:"segments"`
	Error string `json:"error"`
}

// Transcribe sends the audio to the relay. The input must already be
// canonical PCM; language defaults to en-US when the hint is empty.
func (c *Client) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}

	var lastErr *engine.Error
	backoff := c.config.Backoff
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		result, err := c.doRequest(ctx, req.AudioPath, language)
		if err == nil {
			return result, nil
		}

		lastErr = engine.AsError(err, engine.NameAEAP)
		if !lastErr.Retryable || attempt == c.config.MaxAttempts {
			return nil, lastErr
		}

		c.logger.Warn("relay call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return nil, engine.NewError(engine.CodeTimeout, engine.NameAEAP,
				"cancelled while retrying: %v", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, audioPath, language string) (*engine.Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"open audio: %v", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"build request: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"read audio: %v", err)
	}
	if err := writer.WriteField("language", language); err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"build request: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"build request: %v", err)
	}

	url := c.config.BaseURL + "/transcribe"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, retryableNetworkError("read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, engine.NewError(engine.CodeAuthError, engine.NameAEAP,
			"relay rejected credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, retryableNetworkError("relay error (HTTP %d): %s",
			resp.StatusCode, errorMessage(payload))
	case resp.StatusCode != http.StatusOK:
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"relay returned HTTP %d: %s", resp.StatusCode, errorMessage(payload))
	}

	var relay relayResponse
	if err := json.Unmarshal(payload, &relay); err != nil {
		return nil, retryableNetworkError("malformed relay response: %v", err)
	}
	if !relay.Success && relay.Error != "" {
		return nil, engine.NewError(engine.CodeInternal, engine.NameAEAP,
			"relay failure: %s", relay.Error)
	}

	// Zero recognition results are a distinct condition from transport
	// failures.
	if relay.Text == "" && len(relay.Segments) == 0 {
		return nil, engine.NewError(engine.CodeEmptyResult, engine.NameAEAP,
			"backend returned no recognition results")
	}

	result := &engine.Result{
		Text:       relay.Text,
		Confidence: relay.Confidence,
		Language:   relay.Language,
		Engine:     engine.NameAEAP,
		Segments:   make([]engine.Segment, 0, len(relay.Segments)),
	}
	if result.Language == "" {
		result.Language = language
	}
	for _, word := range relay.Segments {
		result.Segments = append(result.Segments, engine.Segment{
			Text:       word.Word,
			Start:      word.Start,
			End:        word.End,
			Confidence: word.Confidence,
		})
	}
	if result.Confidence == 0 && len(result.Segments) > 0 {
		result.Confidence = result.Segments[0].Confidence
	}
	return result, nil
}

// Info implements engine.Engine.
func (c *Client) Info() engine.Info {
	return engine.Info{
		Name:              engine.NameAEAP,
		DisplayName:       "Asterisk AEAP speech relay",
		Local:             false,
		SupportedFormats:  []string{"wav"},
		WordLevelSegments: true,
		DetectsLanguage:   false,
		RequiresCanonical: true,
		DefaultLanguage:   DefaultLanguage,
	}
}

// HealthCheck implements engine.Engine.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func classifyTransportError(err error) *engine.Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		e := engine.NewError(engine.CodeTimeout, engine.NameAEAP,
			"relay call timed out: %v", err)
		e.Retryable = true
		return e
	}
	return retryableNetworkError("relay unreachable: %v", err)
}

func retryableNetworkError(format string, args ...interface{}) *engine.Error {
	e := engine.NewError(engine.CodeNetworkError, engine.NameAEAP, format, args...)
	e.Retryable = true
	return e
}

func errorMessage(payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if len(payload) > 200 {
		payload = payload[:200]
	}
	return string(bytes.TrimSpace(payload))
}
