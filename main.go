package main

import (
	"os"

	"github.com/example/lemmabank/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
