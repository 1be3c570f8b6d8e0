package main

import (
	"os"

	"github.com/JayJamieson/sqlite-api/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
