package main

import (
	"os"

	"github.com/solacelabs/solace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
