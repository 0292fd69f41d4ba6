// Package dimacs parses DIMACS CNF files (spec.md §6 "Input format"). CNF
// parsing is named out of scope for the simulator core in spec.md §1, but
// it is the CLI's only input path, so it lives here as a peripheral
// package rather than inside formula.
package dimacs

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/xDarkicex/satswarm/core"
	"github.com/xDarkicex/satswarm/formula"
)

// Parse reads a DIMACS CNF stream and builds a formula.Formula at the
// given clause width. Clauses wider than width are rejected; narrower
// clauses are accepted, their missing slots treated ABSENT (spec.md §6).
func Parse(r io.Reader, width int) (*formula.Formula, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var numVars, numClauses int
	var clauses []formula.Clause
	headerSeen := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, core.NewSwarmError("dimacs", "Parse", "malformed problem line: "+line)
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrap(err, "dimacs: parsing variable count")
			}
			c, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Wrap(err, "dimacs: parsing clause count")
			}
			numVars, numClauses = v, c
			headerSeen = true
			continue
		}

		if !headerSeen {
			return nil, core.NewSwarmError("dimacs", "Parse", "clause line before problem line")
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[len(fields)-1] != "0" {
			return nil, core.NewSwarmError("dimacs", "Parse", "clause line missing terminating 0: "+line)
		}
		fields = fields[:len(fields)-1]

		lits := make([]formula.Literal, 0, len(fields))
		for _, tok := range fields {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.Wrapf(err, "dimacs: parsing literal %q", tok)
			}
			if n == 0 {
				return nil, core.NewSwarmError("dimacs", "Parse", "unexpected 0 mid-clause")
			}
			v := n
			neg := false
			if v < 0 {
				v, neg = -v, true
			}
			lits = append(lits, formula.Literal{Var: v, Negated: neg})
		}
		clause := formula.Clause{ID: len(clauses), Literals: lits}
		if err := clause.Validate(width, numVars); err != nil {
			return nil, errors.Wrap(err, "dimacs: invalid clause")
		}
		clauses = append(clauses, clause)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "dimacs: reading input")
	}
	if !headerSeen {
		return nil, core.NewSwarmError("dimacs", "Parse", "missing problem line")
	}
	if len(clauses) != numClauses {
		return nil, core.NewSwarmError("dimacs", "Parse",
			"clause count mismatch: header declared "+strconv.Itoa(numClauses)+
				" but found "+strconv.Itoa(len(clauses)))
	}

	return formula.New(numVars, width, clauses)
}
