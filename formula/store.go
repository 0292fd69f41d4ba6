package formula

import "github.com/xDarkicex/satswarm/core"

// StreamKind distinguishes a substitution query from a reset query.
type StreamKind int

const (
	SubstStream StreamKind = iota
	ResetStream
)

// Stream is a node's lazy, in-canonical-order cursor over the Store's
// per-clause masks for one query. At most one Stream may be open per node
// (spec.md §3 invariant); the node owns the Stream it was handed and must
// Close it (directly or by draining it) before opening another.
type Stream struct {
	nodeID   int
	kind     StreamKind
	variable int
	polarity bool // meaningful for SubstStream only

	clauseIdx int  // next clause to emit
	notFound  bool // VARIABLE_NOT_FOUND short-circuits the stream
	done      bool

	readySubst []SlotMask
	readyReset []ResetSlot
	servedIdx  int // clause index the ready mask belongs to
	ready      bool
}

// Variable is the variable this stream was opened for.
func (s *Stream) Variable() int { return s.variable }

// Ready reports whether the Store granted this stream its turn this cycle;
// a node may Consume at most once per Ready cycle, matching the "one mask
// per cycle per stream" bandwidth rule.
func (s *Stream) Ready() bool { return s.ready }

// NotFound reports the §4.A VARIABLE_NOT_FOUND condition: the node treats
// this as "all clauses satisfied" (the baseline end-of-formula signal).
func (s *Stream) NotFound() bool { return s.ready && s.notFound }

// Done reports stream exhaustion (every clause has been streamed, or
// NotFound was delivered).
func (s *Stream) Done() bool { return s.done }

// ConsumeSubst returns the mask ready this cycle and clears the ready flag;
// the Store's next Tick advances the cursor. It is only valid to call when
// Ready() and the stream is a SubstStream.
func (s *Stream) ConsumeSubst() (mask []SlotMask, clauseIdx int, done bool, notFound bool, err error) {
	if !s.ready || s.kind != SubstStream {
		return nil, 0, false, false, core.NewInvariantError("formula", "Stream.ConsumeSubst",
			"consumed a substitution mask when none was ready")
	}
	mask, clauseIdx, done, notFound = s.readySubst, s.servedIdx, s.done, s.notFound
	s.ready = false
	return mask, clauseIdx, done, notFound, nil
}

// ConsumeReset returns the reset mask ready this cycle and clears the ready
// flag; the Store's next Tick advances the cursor. Only valid when Ready()
// and the stream is a ResetStream.
func (s *Stream) ConsumeReset() (mask []ResetSlot, clauseIdx int, done bool, err error) {
	if !s.ready || s.kind != ResetStream {
		return nil, 0, false, core.NewInvariantError("formula", "Stream.ConsumeReset",
			"consumed a reset mask when none was ready")
	}
	mask, clauseIdx, done = s.readyReset, s.servedIdx, s.done
	s.ready = false
	return mask, clauseIdx, done, nil
}

// Store is the clause look-up service (spec.md §4.A). Each node's open
// stream advances its own mask exactly once per Store.Tick, independently
// of every other node's stream: spec.md §5 "Shared resource" is explicit
// that the store is "conceptually shared but simulator-internal" and that
// serialisation is "an artifact of [single-threaded] iteration," not a
// hardware port contended across nodes — the per-stream "one mask per
// cycle" cap (spec.md §4.A) is the only bandwidth limit modeled. N nodes
// with open streams all advance one clause each, every Tick.
type Store struct {
	formula *Formula
	byNode  map[int]*Stream
}

// NewStore creates a clause store over a formula.
func NewStore(f *Formula) *Store {
	return &Store{formula: f, byNode: make(map[int]*Stream)}
}

// OpenSubst registers a substitution query for nodeID. Returns an
// InvariantError if nodeID already has an in-flight query (spec.md §3: "at
// most one in-flight clause-store query per node").
func (s *Store) OpenSubst(nodeID, variable int, polarity bool) (*Stream, error) {
	return s.open(nodeID, SubstStream, variable, polarity)
}

// OpenReset registers a reset query for nodeID.
func (s *Store) OpenReset(nodeID, variable int) (*Stream, error) {
	return s.open(nodeID, ResetStream, variable, false)
}

func (s *Store) open(nodeID int, kind StreamKind, variable int, polarity bool) (*Stream, error) {
	if _, exists := s.byNode[nodeID]; exists {
		return nil, core.NewInvariantError("formula", "Store.open",
			"node already has an in-flight clause-store query")
	}
	st := &Stream{
		nodeID:   nodeID,
		kind:     kind,
		variable: variable,
		polarity: polarity,
		notFound: !s.formula.VariableInRange(variable),
	}
	s.byNode[nodeID] = st
	return st, nil
}

// Close abandons nodeID's in-flight query, e.g. when a node drops a
// substitution stream early on contradiction (spec.md §4.C).
func (s *Store) Close(nodeID int) {
	delete(s.byNode, nodeID)
}

// Tick services every node's open stream, advancing each one mask ahead.
// Call once per simulator cycle, before stepping nodes, so a query opened
// in cycle t becomes Ready no earlier than cycle t+1 — the same
// single-cycle latency as message delivery (spec.md §4.D).
func (s *Store) Tick() {
	for nodeID, st := range s.byNode {
		s.service(st)
		if st.done {
			delete(s.byNode, nodeID)
		}
	}
}

func (s *Store) service(st *Stream) {
	if st.notFound {
		st.ready = true
		st.done = true
		return
	}
	if st.clauseIdx >= s.formula.ClauseCount() {
		st.ready = true
		st.done = true
		return
	}
	clause := s.formula.Clauses[st.clauseIdx]
	switch st.kind {
	case SubstStream:
		st.readySubst = substMask(clause, s.formula.Width, st.variable, st.polarity)
	case ResetStream:
		st.readyReset = resetMask(clause, s.formula.Width, st.variable)
	}
	st.servedIdx = st.clauseIdx
	st.clauseIdx++
	st.ready = true
	st.done = st.clauseIdx >= s.formula.ClauseCount()
}

func substMask(c Clause, width, variable int, polarity bool) []SlotMask {
	mask := make([]SlotMask, width)
	for j, lit := range c.Literals {
		if lit.Var != variable {
			continue
		}
		if lit.MatchesAssignment(polarity) {
			mask[j] = MatchesSign
		} else {
			mask[j] = OpposesSign
		}
	}
	return mask
}

func resetMask(c Clause, width, variable int) []ResetSlot {
	mask := make([]ResetSlot, width)
	for j, lit := range c.Literals {
		if lit.Var == variable {
			mask[j] = true
		}
	}
	return mask
}
