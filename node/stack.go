package node

import "github.com/xDarkicex/satswarm/core"

// EntryKind distinguishes the two decision-stack entry kinds of spec.md §3.
type EntryKind int

const (
	// Speculative entries are actively explored locally: on contradiction
	// this node retries the opposite polarity itself.
	Speculative EntryKind = iota
	// ForkedAway entries have had their sibling branch handed to a
	// neighbor; backtracking past one requires that neighbor's verdict.
	ForkedAway
)

// StackEntry is one (variable, polarity, kind) decision-stack record.
type StackEntry struct {
	Variable int
	Polarity bool
	Kind     EntryKind

	// ForkedTo is the neighbor node id the sibling branch was delegated
	// to; meaningful only when Kind == ForkedAway.
	ForkedTo int
	// ChildUnsat is set once that neighbor's UNSAT_UP arrives. A
	// ForkedAway entry may not be popped until this is true — the node
	// idles, "awaiting a mask" in spirit, until its descendant answers.
	ChildUnsat bool
}

// stack is the per-node backtrack stack of spec.md §3. Variables must be
// strictly increasing bottom-to-top and never repeat.
type stack struct {
	entries []StackEntry
}

func (s *stack) top() (*StackEntry, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	return &s.entries[len(s.entries)-1], true
}

func (s *stack) push(e StackEntry) error {
	if top, ok := s.top(); ok && e.Variable <= top.Variable {
		return core.NewInvariantError("node", "stack.push",
			"variable indices on the stack must strictly increase")
	}
	for _, existing := range s.entries {
		if existing.Variable == e.Variable {
			return core.NewInvariantError("node", "stack.push",
				"variable decided twice on the same stack")
		}
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *stack) pop() (StackEntry, error) {
	e, ok := s.top()
	if !ok {
		return StackEntry{}, core.NewInvariantError("node", "stack.pop", "stack underflow")
	}
	popped := *e
	s.entries = s.entries[:len(s.entries)-1]
	return popped, nil
}

func (s *stack) len() int { return len(s.entries) }

func (s *stack) empty() bool { return len(s.entries) == 0 }

// forkedAwayCount is the "child owes me an answer" obligation count of
// spec.md §3, which must equal the number of ForkedAway entries.
func (s *stack) forkedAwayCount() int {
	n := 0
	for _, e := range s.entries {
		if e.Kind == ForkedAway {
			n++
		}
	}
	return n
}

// markUnsat finds the ForkedAway entry delegated to childID and marks its
// verdict received, a no-op if that entry was already popped.
func (s *stack) markUnsat(childID int) {
	for i := range s.entries {
		if s.entries[i].Kind == ForkedAway && s.entries[i].ForkedTo == childID {
			s.entries[i].ChildUnsat = true
			return
		}
	}
}
