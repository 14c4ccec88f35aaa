package main

import (
	"os"

	"github.com/msxvi/strategy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
