package main

import (
	"os"

	"github.com/AutmateStudio/Anonimiser/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
