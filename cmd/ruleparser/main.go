package main

import (
	"os"

	"github.com/wpblocks/ruleparser/cmd/ruleparser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
