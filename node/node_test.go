package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/satswarm/formula"
	"github.com/xDarkicex/satswarm/message"
)

func mustFormula(t *testing.T, numVars, width int, clauses ...formula.Clause) *formula.Formula {
	t.Helper()
	f, err := formula.New(numVars, width, clauses)
	require.NoError(t, err)
	return f
}

// driveUntilIdle runs store.Tick() and then one Step of n per cycle, so the
// node consumes its mask the same cycle it becomes ready, until n is back in
// IDLE; it fails the test if that takes more than maxCycles cycles.
func driveUntilIdle(t *testing.T, store *formula.Store, n *Node, maxCycles int) {
	t.Helper()
	for i := 0; i < maxCycles; i++ {
		store.Tick()
		_, err := n.Step(nil)
		require.NoError(t, err)
		if n.State() == Idle {
			return
		}
	}
	t.Fatalf("node did not reach IDLE within %d cycles (state=%s)", maxCycles, n.State())
}

func TestStartRootSatisfiableSingleVariable(t *testing.T) {
	f := mustFormula(t, 1, formula.DefaultWidth, formula.Clause{Literals: []formula.Literal{{Var: 1}}})
	store := formula.NewStore(f)
	n := New(0, 100, f, store)
	n.SetNeighborPicker(func(int) (int, bool) { return 0, false })
	require.NoError(t, n.StartRoot())

	var verdict *Verdict
	for i := 0; i < 10 && verdict == nil; i++ {
		store.Tick()
		res, err := n.Step(nil)
		require.NoError(t, err)
		if res.Verdict != nil {
			verdict = res.Verdict
		}
	}
	require.NotNil(t, verdict)
	require.True(t, verdict.Satisfiable)
}

func TestStartRootUnsatisfiableContradiction(t *testing.T) {
	f := mustFormula(t, 1, formula.DefaultWidth,
		formula.Clause{Literals: []formula.Literal{{Var: 1}}},
		formula.Clause{Literals: []formula.Literal{{Var: 1, Negated: true}}},
	)
	store := formula.NewStore(f)
	n := New(0, 100, f, store)
	n.SetNeighborPicker(func(int) (int, bool) { return 0, false })
	require.NoError(t, n.StartRoot())

	var verdict *Verdict
	for i := 0; i < 40 && verdict == nil; i++ {
		store.Tick()
		res, err := n.Step(nil)
		require.NoError(t, err)
		if res.Verdict != nil {
			verdict = res.Verdict
		}
	}
	require.NotNil(t, verdict)
	require.False(t, verdict.Satisfiable)
}

func TestDecidingForksOppositePolarityToFreeNeighbor(t *testing.T) {
	f := mustFormula(t, 2, formula.DefaultWidth,
		formula.Clause{Literals: []formula.Literal{{Var: 1}, {Var: 2}}},
	)
	store := formula.NewStore(f)
	n := New(0, 100, f, store)
	n.SetNeighborPicker(func(int) (int, bool) { return 1, true })
	require.NoError(t, n.StartRoot())

	var forked *message.Message
	for i := 0; i < 10 && forked == nil; i++ {
		store.Tick()
		res, err := n.Step(nil)
		require.NoError(t, err)
		for i := range res.Outbox {
			if res.Outbox[i].Kind == message.Fork {
				forked = &res.Outbox[i]
			}
		}
	}
	require.NotNil(t, forked)
	require.Equal(t, 0, forked.Source)
	require.Equal(t, 1, forked.Dest)
	require.Equal(t, 0, forked.Forked.Parent)
}

func TestAdoptForkBeginsSubstitutingNextVariable(t *testing.T) {
	f := mustFormula(t, 2, formula.DefaultWidth,
		formula.Clause{Literals: []formula.Literal{{Var: 1}, {Var: 2}}},
	)
	store := formula.NewStore(f)
	child := New(1, 100, f, store)
	child.SetNeighborPicker(func(int) (int, bool) { return 0, false })

	buf := f.NewBuffer()
	arrivals := []message.Message{{
		Kind:   message.Fork,
		Source: 0,
		Dest:   1,
		Forked: message.ForkPayload{Buffer: buf, Depth: 1, Parent: 0},
	}}
	res, err := child.Step(arrivals)
	require.NoError(t, err)
	require.Equal(t, Substituting, child.State())
	require.Empty(t, res.Outbox)
}

func TestBacktrackingWaitsForForkedAwayChildVerdict(t *testing.T) {
	f := mustFormula(t, 1, formula.DefaultWidth,
		formula.Clause{Literals: []formula.Literal{{Var: 1}}},
		formula.Clause{Literals: []formula.Literal{{Var: 1, Negated: true}}},
	)
	store := formula.NewStore(f)
	n := New(0, 100, f, store)
	n.state = Backtracking
	n.buffer = f.NewBuffer()
	n.stk.entries = []StackEntry{{Variable: 1, Kind: ForkedAway, ForkedTo: 7, ChildUnsat: false}}

	res, err := n.Step(nil)
	require.NoError(t, err)
	require.Equal(t, Backtracking, n.State())
	require.Nil(t, res.Verdict)

	res, err = n.Step([]message.Message{{Kind: message.UnsatUp, Source: 7, Dest: 0}})
	require.NoError(t, err)
	require.True(t, n.stk.entries[0].ChildUnsat)
}

func TestSatUpPreemptsCurrentWork(t *testing.T) {
	f := mustFormula(t, 2, formula.DefaultWidth,
		formula.Clause{Literals: []formula.Literal{{Var: 1}, {Var: 2}}},
	)
	store := formula.NewStore(f)
	n := New(0, 100, f, store)
	n.SetNeighborPicker(func(int) (int, bool) { return 0, false })
	require.NoError(t, n.StartRoot())

	witness := formula.Assignment{2: true}
	res, err := n.Step([]message.Message{{Kind: message.SatUp, Source: 3, Dest: 0, Witness: witness}})
	require.NoError(t, err)
	require.NotNil(t, res.Verdict)
	require.True(t, res.Verdict.Satisfiable)
	require.Equal(t, witness, res.Verdict.Witness)
}
