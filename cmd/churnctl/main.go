package main

import (
	"os"

	"github.com/churnscope/churnscope/cmd/churnctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
