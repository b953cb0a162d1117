package main

import (
	"os"

	"github.com/bnema/memochat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
