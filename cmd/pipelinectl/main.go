package main

import (
	"os"

	"livestream-pipeline/cmd/pipelinectl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
