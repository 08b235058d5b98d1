package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ name string }

func (s *stubEngine) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	return &Result{Text: "stub"}, nil
}
func (s *stubEngine) Info() Info                          { return Info{Name: s.name} }
func (s *stubEngine) HealthCheck(ctx context.Context) error { return nil }

func TestRegistryAddAndGet(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Add("alpha", &stubEngine{name: "alpha"}))
	require.NoError(t, registry.Add("beta", &stubEngine{name: "beta"}))

	eng, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", eng.Info().Name)

	_, err = registry.Get("missing")
	assert.Error(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, registry.Names())
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Add("alpha", &stubEngine{name: "alpha"}))
	assert.Error(t, registry.Add("alpha", &stubEngine{name: "alpha"}))
	assert.Error(t, registry.Add("", &stubEngine{name: ""}))
	assert.Error(t, registry.Add("gamma", nil))
}

func TestRegisterCreatorPanicsOnDuplicate(t *testing.T) {
	creator := func(settings map[string]interface{}) (Engine, error) {
		return &stubEngine{name: "dup"}, nil
	}

	RegisterCreator("registry_test_dup", creator)
	assert.Panics(t, func() {
		RegisterCreator("registry_test_dup", creator)
	})

	got, err := GetCreator("registry_test_dup")
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = GetCreator("registry_test_never_registered")
	assert.Error(t, err)
}
