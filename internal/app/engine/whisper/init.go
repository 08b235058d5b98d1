package whisper

import (
	"os"

	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

func init() {
	engine.RegisterCreator(engine.NameWhisper, createFromSettings)
}

func createFromSettings(settings map[string]interface{}) (engine.Engine, error) {
	config := Config{
		BinaryPath: os.Getenv("WHISPER_CPP_BINARY"),
		ModelPath:  os.Getenv("WHISPER_CPP_MODEL"),
	}

	if binaryPath, ok := settings["binary_path"].(string); ok && binaryPath != "" {
		config.BinaryPath = binaryPath
	}
	if modelPath, ok := settings["model_path"].(string); ok && modelPath != "" {
		config.ModelPath = modelPath
	}
	if modelDir, ok := settings["model_dir"].(string); ok {
		config.ModelDir = modelDir
	}
	if modelSize, ok := settings["model_size"].(string); ok {
		config.ModelSize = modelSize
	}
	if threads, ok := settings["threads"].(int); ok {
		config.Threads = threads
	}

	// CLI override, set by the transcribe command's --model flag. Only takes
	// effect when the model is resolved from a directory; an explicit
	// model_path wins.
	if size := os.Getenv("WHISPER_MODEL_SIZE"); size != "" {
		config.ModelSize = size
		if config.ModelDir != "" {
			config.ModelPath = ""
		}
	}

	logger := zap.L().Named("whisper")
	return New(config, logger), nil
}
