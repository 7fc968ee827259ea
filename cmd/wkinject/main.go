package main

import (
	"os"

	"github.com/moasq/wkinject/internal/commands"
	"github.com/moasq/wkinject/internal/terminal"
)

func main() {
	if err := commands.Execute(); err != nil {
		terminal.Error("Error: " + err.Error())
		os.Exit(1)
	}
}
