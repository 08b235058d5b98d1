package openai

import (
	"fmt"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"speechbench/internal/app/engine"
)

func init() {
	engine.RegisterCreator(engine.NameOpenAI, createFromSettings)
}

func createFromSettings(settings map[string]interface{}) (engine.Engine, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if key, ok := settings["api_key"].(string); ok && key != "" {
		apiKey = key
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai engine requires OPENAI_API_KEY")
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if baseURL, ok := settings["base_url"].(string); ok && baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	model := ""
	if m, ok := settings["model"].(string); ok {
		model = m
	}

	return New(goopenai.NewClientWithConfig(clientConfig), model), nil
}
