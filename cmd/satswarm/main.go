// Command satswarm runs the SatSwarm benchmark harness: it walks a
// directory of DIMACS CNF files, simulates each over a configurable mesh,
// cross-checks the verdict against an external oracle solver, and prints
// one report line per file (spec.md §6).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
