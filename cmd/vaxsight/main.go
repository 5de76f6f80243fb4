package main

import (
	"os"

	"github.com/eunbi/vaxsight/cmd/vaxsight/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
