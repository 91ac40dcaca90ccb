package main

import (
	"os"

	"github.com/vpsbridge/vpsbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
