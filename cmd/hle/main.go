// Command hle is a benchmark harness for reasoning models served by vLLM.
//
// It launches the inference engine with a fixed deployment configuration
// and runs benchmark predictions against the resulting endpoint.
package main

import (
	"os"

	"github.com/hle-eval/hle/cmd/hle/app"
)

func main() {
	cmd := app.NewHLECommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
