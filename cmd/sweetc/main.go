package main

import (
	"fmt"
	"os"

	"github.com/kvalavik/sweetc/cmd/sweetc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
