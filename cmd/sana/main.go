package main

import (
	"os"

	"github.com/sana-care/sana-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
