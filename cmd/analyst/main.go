package main

import (
	"os"

	"github.com/ZenKaiii/ai-stock-analyst/cmd/analyst/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
