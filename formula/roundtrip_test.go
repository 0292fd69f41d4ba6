package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestForkRoundTripMatchesLocalSpeculation is spec.md §8's round-trip
// property: a forked buffer snapshot, substituted by the child with the
// same variable/polarity the parent would have chosen locally, must equal
// the buffer the parent would have produced by speculating on its own.
// go-cmp (rather than testify's field-by-field assertions) gives a single
// structural diff across the whole per-clause term table if this ever
// regresses.
func TestForkRoundTripMatchesLocalSpeculation(t *testing.T) {
	f := mustFormula(t, 2, DefaultWidth,
		Clause{Literals: []Literal{{Var: 1}, {Var: 2}}},
		Clause{Literals: []Literal{{Var: 1, Negated: true}}},
	)

	base := f.NewBuffer()

	// "Local speculation": the parent itself assigns variable 1 = true.
	local := base.Clone()
	status1, err := local.ApplySubst(0, substMask(f.Clauses[0], f.Width, 1, true))
	require.NoError(t, err)
	_ = status1
	_, err = local.ApplySubst(1, substMask(f.Clauses[1], f.Width, 1, true))
	require.NoError(t, err)

	// "Forked": the sibling snapshot built the way a FORK payload is, via
	// WithVariable, then substituted identically.
	forked := base.WithVariable(1, true)

	if diff := cmp.Diff(local, forked, cmp.AllowUnexported(Buffer{})); diff != "" {
		t.Fatalf("forked buffer diverged from local speculation (-local +forked):\n%s", diff)
	}
}
