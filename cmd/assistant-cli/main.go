package main

import (
	"os"

	"sales-assistant-be/cmd/assistant-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
