package formula

import (
	"strings"

	"github.com/xDarkicex/satswarm/core"
)

// DefaultWidth is the baseline clause width k. New falls back to it when
// given a non-positive width, and the CLI parses every benchmark at it.
// Widths beyond the configured k are a parse-time error (spec.md §6);
// narrower clauses leave trailing slots ABSENT.
const DefaultWidth = 3

// Clause is an ordered tuple of up to Width literals. Clauses are numbered
// 0..C-1 in the order they were added to a Formula; that numbering is the
// canonical iteration order every node and the Store agree on.
type Clause struct {
	ID       int
	Literals []Literal
}

// String renders a clause as a disjunction, e.g. "(1 -2 3)".
func (c Clause) String() string {
	parts := make([]string, len(c.Literals))
	for i, l := range c.Literals {
		parts[i] = l.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Validate checks a clause against a configured width and variable count,
// returning the §6 "clause widths beyond the configured k are rejected"
// error when it does not fit.
func (c Clause) Validate(width, numVars int) error {
	if len(c.Literals) > width {
		return core.NewSwarmError("formula", "Clause.Validate",
			"clause width exceeds configured k")
	}
	for _, l := range c.Literals {
		if l.Var < 1 || l.Var > numVars {
			return core.NewSwarmError("formula", "Clause.Validate",
				"literal references variable outside [1, V]")
		}
	}
	return nil
}
