package main

import (
	"os"

	"github.com/domzcondes/opsmon/cmd/opsmon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
