package aeap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

func writeFakeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake pcm"), 0o644))
	return path
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, zap.NewNop())
}

func TestTranscribeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transcribe", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "fr-FR", r.FormValue("language"))
		_, header, err := r.FormFile("audio_file")
		require.NoError(t, err)
		assert.Equal(t, "clip.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"text": "hello world",
			"confidence": 0.87,
			"language": "fr-FR",
			"segments": [
				{"word": "hello", "start": 0.1, "end": 0.4, "confidence": 0.9},
				{"word": "world", "start": 0.5, "end": 0.9, "confidence": 0.84}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Transcribe(context.Background(), &engine.Request{
		AudioPath: writeFakeAudio(t),
		Language:  "fr-FR",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, 0.87, result.Confidence)
	assert.Equal(t, "fr-FR", result.Language)
	assert.Equal(t, engine.NameAEAP, result.Engine)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "hello", result.Segments[0].Text)
	assert.Equal(t, 0.4, result.Segments[0].End)
}

func TestTranscribeDefaultsLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, DefaultLanguage, r.FormValue("language"))
		w.Write([]byte(`{"success": true, "text": "ok", "segments": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Transcribe(context.Background(), &engine.Request{
		AudioPath: writeFakeAudio(t),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, result.Language)
}

func TestTranscribeAuthFailureNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Transcribe(context.Background(), &engine.Request{AudioPath: writeFakeAudio(t)})
	require.Error(t, err)
	assert.Equal(t, engine.CodeAuthError, engine.CodeOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "auth failures are not retryable")
}

func TestTranscribeRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success": true, "text": "recovered", "segments": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Transcribe(context.Background(), &engine.Request{AudioPath: writeFakeAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTranscribeRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Transcribe(context.Background(), &engine.Request{AudioPath: writeFakeAudio(t)})
	require.Error(t, err)
	assert.Equal(t, engine.CodeNetworkError, engine.CodeOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTranscribeUnreachableRelay(t *testing.T) {
	client := New(Config{
		BaseURL:     "http://127.0.0.1:1",
		Timeout:     time.Second,
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
	}, zap.NewNop())

	_, err := client.Transcribe(context.Background(), &engine.Request{AudioPath: writeFakeAudio(t)})
	require.Error(t, err)
	assert.Equal(t, engine.CodeNetworkError, engine.CodeOf(err))
}

func TestTranscribeEmptyRecognition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "text": "", "segments": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Transcribe(context.Background(), &engine.Request{AudioPath: writeFakeAudio(t)})
	require.Error(t, err)
	assert.Equal(t, engine.CodeEmptyResult, engine.CodeOf(err))
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.HealthCheck(context.Background()))

	down := newTestClient("http://127.0.0.1:1")
	assert.Error(t, down.HealthCheck(context.Background()))
}
