// Package enginetest provides a configurable fake engine so tests never load
// a real model or touch the network.
package enginetest

import (
	"context"
	"sync"
	"time"

	"speechbench/internal/app/engine"
)

// MockEngine implements engine.Engine with scripted behavior.
type MockEngine struct {
	mu sync.Mutex

	// EngineName is reported in Info and stamped on results.
	EngineName string
	// Result returned on success. A copy is handed out per call.
	Result *engine.Result
	// Err, when set, fails every Transcribe call.
	Err error
	// Latency delays each call, to exercise timeouts.
	Latency time.Duration
	// RequiresCanonical marks the fake as needing normalized input.
	RequiresCanonical bool
	// HealthErr, when set, fails HealthCheck.
	HealthErr error

	calls []engine.Request
}

// NewMock creates a mock engine returning a canned successful result.
func NewMock(name string) *MockEngine {
	return &MockEngine{
		EngineName: name,
		Result: &engine.Result{
			Text:       "this is a mock transcription",
			Language:   "en",
			Confidence: 0.9,
			Segments: []engine.Segment{
				{Text: "this is a mock transcription", Start: 0, End: 1.5, Confidence: 0.9},
			},
		},
	}
}

// Transcribe implements engine.Engine.
func (m *MockEngine) Transcribe(ctx context.Context, req *engine.Request) (*engine.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *req)
	latency := m.Latency
	err := m.Err
	result := m.Result
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(latency):
		}
	}
	if err != nil {
		return nil, err
	}

	out := *result
	out.Engine = m.EngineName
	return &out, nil
}

// Info implements engine.Engine.
func (m *MockEngine) Info() engine.Info {
	return engine.Info{
		Name:              m.EngineName,
		DisplayName:       "mock " + m.EngineName,
		Local:             true,
		RequiresCanonical: m.RequiresCanonical,
	}
}

// HealthCheck implements engine.Engine.
func (m *MockEngine) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// Calls returns a copy of the recorded requests.
func (m *MockEngine) Calls() []engine.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engine.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many Transcribe calls were made.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
