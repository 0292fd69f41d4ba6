package sim

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/satswarm/formula"
	"github.com/xDarkicex/satswarm/mesh"
)

func TestRunSingleVariableSatisfiable(t *testing.T) {
	f, err := formula.New(1, formula.DefaultWidth, []formula.Clause{
		{Literals: []formula.Literal{{Var: 1}}},
	})
	require.NoError(t, err)
	s, err := New(f, mesh.Grid, 1, 100, 1000, zerolog.Nop())
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)
	require.Equal(t, SAT, res.Outcome)
	require.Greater(t, res.Cycles, 0)
}

func TestRunContradictionIsUnsat(t *testing.T) {
	f, err := formula.New(1, formula.DefaultWidth, []formula.Clause{
		{Literals: []formula.Literal{{Var: 1}}},
		{Literals: []formula.Literal{{Var: 1, Negated: true}}},
	})
	require.NoError(t, err)
	s, err := New(f, mesh.Grid, 1, 100, 1000, zerolog.Nop())
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)
	require.Equal(t, UNSAT, res.Outcome)
}

func TestRunHitsCycleCapForUnderpoweredRun(t *testing.T) {
	f, err := formula.New(1, formula.DefaultWidth, []formula.Clause{
		{Literals: []formula.Literal{{Var: 1}}},
	})
	require.NoError(t, err)
	s, err := New(f, mesh.Grid, 1, 100, 1, zerolog.Nop())
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)
	require.Equal(t, Unknown, res.Outcome)
}

// unsatExhaustive3Var forbids each of the 8 possible (x1,x2,x3) assignments
// with its own clause, so proving UNSAT requires the search to reach a
// contradiction down every one of the 8 leaves of the decision tree —
// exactly the shape spec.md §8 scenario 4 needs to make forking pay off.
func unsatExhaustive3Var(t *testing.T) *formula.Formula {
	t.Helper()
	var clauses []formula.Clause
	for mask := 0; mask < 8; mask++ {
		lits := make([]formula.Literal, 3)
		for v := 0; v < 3; v++ {
			// Forbid the assignment where bit v of mask is the variable's
			// truth value: the clause literal takes the opposite sign.
			bit := mask&(1<<uint(v)) != 0
			lits[v] = formula.Literal{Var: v + 1, Negated: bit}
		}
		clauses = append(clauses, formula.Clause{Literals: lits})
	}
	f, err := formula.New(3, formula.DefaultWidth, clauses)
	require.NoError(t, err)
	return f
}

func TestDenseMultiNodeFasterThanSingleNode(t *testing.T) {
	f := unsatExhaustive3Var(t)

	single, err := New(f, mesh.Dense, 1, 100, 100000, zerolog.Nop())
	require.NoError(t, err)
	singleRes, err := single.Run()
	require.NoError(t, err)
	require.Equal(t, UNSAT, singleRes.Outcome)

	parallel, err := New(f, mesh.Dense, 8, 100, 100000, zerolog.Nop())
	require.NoError(t, err)
	parallelRes, err := parallel.Run()
	require.NoError(t, err)
	require.Equal(t, UNSAT, parallelRes.Outcome)

	require.Less(t, parallelRes.Cycles, singleRes.Cycles)
}

func TestNodeCountMonotonicityOnDense(t *testing.T) {
	f := unsatExhaustive3Var(t)

	var prev int
	for i, n := range []int{1, 2, 4, 8} {
		s, err := New(f, mesh.Dense, n, 100, 100000, zerolog.Nop())
		require.NoError(t, err)
		res, err := s.Run()
		require.NoError(t, err)
		require.Equal(t, UNSAT, res.Outcome)
		if i > 0 {
			require.LessOrEqual(t, res.Cycles, prev)
		}
		prev = res.Cycles
	}
}

func TestBandwidthSweepNonIncreasingCycles(t *testing.T) {
	f, err := formula.New(3, formula.DefaultWidth, []formula.Clause{
		{Literals: []formula.Literal{{Var: 1}, {Var: 2}, {Var: 3}}},
	})
	require.NoError(t, err)

	var prev int
	for i, b := range []int{1, 10, 100} {
		s, err := New(f, mesh.Dense, 4, b, 10000, zerolog.Nop())
		require.NoError(t, err)
		res, err := s.Run()
		require.NoError(t, err)
		require.Equal(t, SAT, res.Outcome)
		if i > 0 {
			require.LessOrEqual(t, res.Cycles, prev)
		}
		prev = res.Cycles
	}
}
