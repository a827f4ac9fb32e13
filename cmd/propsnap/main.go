// main is the entry point for the propsnap CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rentfold/propsnap/cmd"
	"github.com/rentfold/propsnap/internal/snapstore"
)

func main() {
	defer snapstore.Shutdown()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
