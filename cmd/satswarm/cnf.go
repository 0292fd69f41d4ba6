package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/xDarkicex/satswarm/dimacs"
	"github.com/xDarkicex/satswarm/formula"
)

// loadCNF opens and parses a DIMACS CNF file at the simulator's baseline
// clause width (spec.md §3 "Clause... baseline k = 3").
func loadCNF(path string) (*formula.Formula, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cnf: opening benchmark file")
	}
	defer f.Close()
	return dimacs.Parse(f, formula.DefaultWidth)
}
