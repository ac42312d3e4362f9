package main

import (
	"os"

	"github.com/indrajit912/hermes/cmd/hermesctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
