package main

import (
	"os"

	"github.com/pyverse/pydown/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
