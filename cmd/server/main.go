package main

import (
	"os"

	"github.com/mechinsul/leadform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
