package main

import (
	"os"

	"github.com/arbor/paesdiag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
