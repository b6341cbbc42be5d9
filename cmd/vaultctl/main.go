package main

import (
	"os"

	"github.com/congo-pay/anchor_vault/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
