// Package main provides the entry point for the rmkgen CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/rmkgen/cmd/rmkgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
