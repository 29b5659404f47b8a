package main

import (
	"os"

	"github.com/constructflow/constructflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
