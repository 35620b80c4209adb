package main

import (
	"os"

	"github.com/bnema/shopvoice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
