// Command gonodes runs, validates, and profiles node graph documents.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/gonodes/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
