// FragMass - Peptide fragment mass calculator
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/FragMass/cmd/fragmass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
