package main

import (
	"speechbench/cmd/sbench/cmd"

	// Import engines to register them
	_ "speechbench/internal/app/engine/aeap"
	_ "speechbench/internal/app/engine/openai"
	_ "speechbench/internal/app/engine/whisper"
)

func main() {
	cmd.Execute()
}
