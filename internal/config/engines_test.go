package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnginesConfig(t *testing.T) {
	t.Setenv("ENGINES_TEST_URL", "http://relay.internal:3001")

	path := filepath.Join(t.TempDir(), "engines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engines:
  - name: whisper
    enabled: true
    settings:
      model_size: small
      threads: 8
  - name: asterisk-aeap
    enabled: true
    settings:
      base_url: "${ENGINES_TEST_URL}"
  - name: openai
    enabled: false
    settings: {}
`), 0o644))

	cfg, err := LoadEnginesConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Engines, 3)

	enabled := cfg.Enabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "whisper", enabled[0].Name)
	assert.Equal(t, "small", enabled[0].Settings["model_size"])
	assert.Equal(t, 8, enabled[0].Settings["threads"])
	assert.Equal(t, "http://relay.internal:3001", enabled[1].Settings["base_url"])
}

func TestLoadEnginesConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadEnginesConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	enabled := cfg.Enabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "whisper", enabled[0].Name)
	assert.Equal(t, "asterisk-aeap", enabled[1].Name)
}

func TestLoadEnginesConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engines: [unclosed"), 0o644))

	_, err := LoadEnginesConfig(path)
	assert.Error(t, err)
}

func TestExpandSettingsUnsetVarBecomesEmpty(t *testing.T) {
	out := expandSettings(map[string]interface{}{
		"base_url": "${DEFINITELY_NOT_SET_ANYWHERE}",
		"threads":  4,
	})
	assert.Equal(t, "", out["base_url"])
	assert.Equal(t, 4, out["threads"])
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("CONFIG_TEST_STR", "value")
	t.Setenv("CONFIG_TEST_INT", "42")
	t.Setenv("CONFIG_TEST_BAD_INT", "forty")

	assert.Equal(t, "value", Getenv("CONFIG_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", Getenv("CONFIG_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, GetenvInt("CONFIG_TEST_INT", 7))
	assert.Equal(t, 7, GetenvInt("CONFIG_TEST_BAD_INT", 7))
	assert.Equal(t, 7, GetenvInt("CONFIG_TEST_UNSET", 7))
}
