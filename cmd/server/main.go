package main

import (
	"os"

	"github.com/thablackcodes/gresh-finance/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
