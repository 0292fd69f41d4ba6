// Package node implements the per-node DPLL state machine of spec.md §4.C:
// a tagged variant over five states (IDLE, DECIDING, SUBSTITUTING,
// BACKTRACKING, REPORTING) plus whatever clause-store stream cursor is in
// progress, expressed as a closed set of explicit cases rather than an
// inheritance hierarchy (spec.md §9).
package node

import (
	"sort"

	"github.com/xDarkicex/satswarm/core"
	"github.com/xDarkicex/satswarm/formula"
	"github.com/xDarkicex/satswarm/message"
)

// State is one of the five closed node-state-machine cases.
type State int

const (
	Idle State = iota
	Deciding
	Substituting
	Backtracking
	Reporting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Deciding:
		return "DECIDING"
	case Substituting:
		return "SUBSTITUTING"
	case Backtracking:
		return "BACKTRACKING"
	case Reporting:
		return "REPORTING"
	default:
		return "UNKNOWN"
	}
}

// noParent marks a node with no parent address: the root, or a node that
// has not yet been forked into.
const noParent = -1

// Verdict is the terminal outcome of a node's own branch, or the global
// outcome once it reaches the root.
type Verdict struct {
	Satisfiable bool
	Witness     formula.Assignment
}

// StepResult is what one cycle of Step produced.
type StepResult struct {
	Outbox  []message.Message
	Busy    bool
	Verdict *Verdict // non-nil only when this node just resolved globally (root)
}

// Node is one DPLL engine in the mesh. It owns its assignment buffer,
// decision stack, and outbox exclusively (spec.md §3 "Ownership").
type Node struct {
	ID        int
	Bandwidth int

	f     *formula.Formula
	store *formula.Store

	state State
	stk   stack

	buffer    *formula.Buffer
	preDecide *formula.Buffer // snapshot before the in-flight variable's substitution
	baseDepth int             // variables already fixed by an inherited FORK buffer

	parent int
	isRoot bool

	substStream *formula.Stream
	resetStream *formula.Stream

	pendingWitness formula.Assignment
	havePreempt    bool

	pending []message.Message
	picker  NeighborPicker
}

// New constructs an idle node bound to the shared formula and store.
func New(id, bandwidth int, f *formula.Formula, store *formula.Store) *Node {
	return &Node{ID: id, Bandwidth: bandwidth, f: f, store: store, state: Idle, parent: noParent}
}

// StartRoot bootstraps the originating node directly into SUBSTITUTING
// with an empty buffer (spec.md §4.C "IDLE -> SUBSTITUTING at simulator
// start on the root node only"). Call once, before cycle 0.
func (n *Node) StartRoot() error {
	n.isRoot = true
	n.parent = noParent
	n.buffer = n.f.NewBuffer()
	return n.beginDecision(1)
}

// State reports the node's current state, for metrics and tests.
func (n *Node) State() State { return n.state }

// Busy reports the spec.md §4.C busy signal as observable by neighbors
// going into the next cycle.
func (n *Node) Busy() bool { return n.state != Idle }

// Step advances the node by exactly one cycle: it drains up to Bandwidth
// queued inbound messages (processed in (source, kind) lexicographic
// order), then performs at most one state-machine advance. arrivals is the
// set of messages the interconnect delivered to this node this cycle.
func (n *Node) Step(arrivals []message.Message) (StepResult, error) {
	n.pending = append(n.pending, arrivals...)
	sort.SliceStable(n.pending, func(i, j int) bool {
		a, b := n.pending[i], n.pending[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Kind < b.Kind
	})

	var out StepResult
	consumed := 0
	remaining := n.pending[:0:0]
	forkedThisCycle := false
	for _, m := range n.pending {
		if consumed >= n.Bandwidth {
			remaining = append(remaining, m)
			continue
		}
		switch m.Kind {
		case message.UnsatUp:
			n.stk.markUnsat(m.Source)
			consumed++
		case message.SatUp:
			n.havePreempt = true
			n.pendingWitness = m.Witness
			consumed++
		case message.Fork:
			if n.state != Idle || forkedThisCycle {
				remaining = append(remaining, m)
				continue
			}
			if err := n.adoptFork(m); err != nil {
				return out, err
			}
			forkedThisCycle = true
			consumed++
		default:
			remaining = append(remaining, m)
		}
	}
	n.pending = remaining

	if n.havePreempt {
		n.report(Verdict{Satisfiable: true, Witness: n.pendingWitness}, &out)
		out.Busy = true
		return out, nil
	}

	switch n.state {
	case Idle:
		// Nothing to do; FORK (if any) was already consumed above.
	case Deciding:
		if err := n.handleDeciding(&out); err != nil {
			return out, err
		}
	case Substituting:
		if err := n.handleSubstituting(&out); err != nil {
			return out, err
		}
	case Backtracking:
		if err := n.handleBacktracking(&out); err != nil {
			return out, err
		}
	case Reporting:
		// handled via report() transitions below; Reporting is set and
		// resolved within the same cycle it is entered (see handleDeciding
		// / handleBacktracking), so Step should not observe it standing
		// alone. Treat as a bug if it ever does.
		return out, core.NewInvariantError("node", "Step", "stale REPORTING state observed")
	}

	out.Busy = n.state != Idle || forkedThisCycle || out.Verdict != nil || len(out.Outbox) > 0
	return out, nil
}

func (n *Node) adoptFork(m message.Message) error {
	n.parent = m.Forked.Parent
	n.isRoot = false
	n.baseDepth = m.Forked.Depth
	n.buffer = m.Forked.Buffer.Clone()
	n.stk = stack{}
	n.substStream = nil
	n.resetStream = nil
	return n.beginDecision(n.baseDepth + 1)
}

// beginDecision pushes a fresh speculative entry for variable v and opens
// its first substitution query (polarity false, the "0 first" tie-break).
func (n *Node) beginDecision(v int) error {
	n.preDecide = n.buffer.Clone()
	if err := n.stk.push(StackEntry{Variable: v, Polarity: false, Kind: Speculative}); err != nil {
		return err
	}
	stream, err := n.store.OpenSubst(n.ID, v, false)
	if err != nil {
		return err
	}
	n.substStream = stream
	n.state = Substituting
	return nil
}

func (n *Node) handleSubstituting(out *StepResult) error {
	if !n.substStream.Ready() {
		return nil // awaiting a mask; idle this cycle
	}
	mask, idx, done, notFound, err := n.substStream.ConsumeSubst()
	if err != nil {
		return err
	}
	if notFound {
		n.substStream = nil
		n.state = Deciding
		return nil
	}
	status, err := n.buffer.ApplySubst(idx, mask)
	if err != nil {
		return err
	}
	if status == formula.StatusContradicted {
		n.store.Close(n.ID)
		n.substStream = nil
		n.state = Backtracking
		return nil
	}
	if done {
		n.substStream = nil
		n.state = Deciding
	}
	return nil
}

func (n *Node) handleDeciding(out *StepResult) error {
	if n.buffer.AllSatisfied() {
		witness := n.witnessFromStack()
		n.report(Verdict{Satisfiable: true, Witness: witness}, out)
		return nil
	}

	top, ok := n.stk.top()
	if !ok {
		return core.NewInvariantError("node", "handleDeciding", "no decision to act on")
	}

	if target, found := n.freeNeighbor(); found {
		forkBuf := n.preDecide.WithVariable(top.Variable, !top.Polarity)
		out.Outbox = append(out.Outbox, message.Message{
			Kind:   message.Fork,
			Source: n.ID,
			Dest:   target,
			Forked: message.ForkPayload{Buffer: forkBuf, Depth: top.Variable, Parent: n.ID},
		})
		top.Kind = ForkedAway
		top.ForkedTo = target
	}

	return n.beginDecision(n.baseDepth + n.stk.len() + 1)
}

// NeighborPicker resolves the lowest free neighbor for a fork attempt, or
// ok=false if every neighbor is busy. It encapsulates §4.D's "lowest
// neighbor index first among those with busy=false" tie-break, since only
// the driver knows the mesh topology and the live (same-cycle) busy
// vector. The driver installs one per node via SetNeighborPicker.
type NeighborPicker func(nodeID int) (neighbor int, ok bool)

func (n *Node) freeNeighbor() (int, bool) {
	if n.picker == nil {
		return 0, false
	}
	return n.picker(n.ID)
}

// SetNeighborPicker wires the driver's live neighbor-busy arbitration into
// this node; see NeighborPicker.
func (n *Node) SetNeighborPicker(p NeighborPicker) { n.picker = p }

func (n *Node) handleBacktracking(out *StepResult) error {
	top, ok := n.stk.top()
	if !ok {
		n.report(Verdict{Satisfiable: false}, out)
		return nil
	}

	if n.resetStream == nil {
		if top.Kind == ForkedAway && !top.ChildUnsat {
			return nil // awaiting the delegated neighbor's verdict
		}
		stream, err := n.store.OpenReset(n.ID, top.Variable)
		if err != nil {
			return err
		}
		n.resetStream = stream
		return nil
	}

	if !n.resetStream.Ready() {
		return nil
	}
	mask, idx, done, err := n.resetStream.ConsumeReset()
	if err != nil {
		return err
	}
	if err := n.buffer.ApplyReset(idx, mask); err != nil {
		return err
	}
	if !done {
		return nil
	}
	n.resetStream = nil

	switch top.Kind {
	case ForkedAway:
		if _, err := n.stk.pop(); err != nil {
			return err
		}
	case Speculative:
		if !top.Polarity {
			top.Polarity = true
			n.preDecide = n.buffer.Clone()
			stream, err := n.store.OpenSubst(n.ID, top.Variable, true)
			if err != nil {
				return err
			}
			n.substStream = stream
			n.state = Substituting
			return nil
		}
		if _, err := n.stk.pop(); err != nil {
			return err
		}
	}

	if n.stk.empty() {
		n.report(Verdict{Satisfiable: false}, out)
		return nil
	}
	return nil
}

// report transitions the node into REPORTING and, in the same cycle,
// emits its upward message (or, for the root, resolves the global
// verdict), then returns to IDLE — matching "REPORTING: emit ... then
// enter IDLE" read as a single cycle's work (spec.md §4.C).
func (n *Node) report(v Verdict, out *StepResult) {
	n.state = Reporting
	if n.isRoot {
		out.Verdict = &v
		n.reset()
		return
	}
	kind := message.UnsatUp
	if v.Satisfiable {
		kind = message.SatUp
	}
	out.Outbox = append(out.Outbox, message.Message{
		Kind: kind, Source: n.ID, Dest: n.parent, Witness: v.Witness,
	})
	n.reset()
}

func (n *Node) reset() {
	n.state = Idle
	n.stk = stack{}
	n.buffer = nil
	n.preDecide = nil
	n.substStream = nil
	n.resetStream = nil
	n.pendingWitness = nil
	n.havePreempt = false
	n.parent = noParent
	n.isRoot = false
	n.baseDepth = 0
}

// witnessFromStack builds the variable -> value witness from this node's
// own stack only. Ancestor assignments are baked into the inherited buffer
// rather than recorded as variables, so they are absent from the witness;
// the oracle comparison only checks SAT/UNSAT agreement, not the witness
// contents.
func (n *Node) witnessFromStack() formula.Assignment {
	w := make(formula.Assignment, n.stk.len())
	for _, e := range n.stk.entries {
		w[e.Variable] = e.Polarity
	}
	return w
}
