// Package message defines the typed records exchanged between nodes and
// between a node and the clause store (spec.md §4.B). Messages are owned
// by whoever last produced them; ownership transfers to the recipient on
// delivery (spec.md §3 "Ownership").
package message

import "github.com/xDarkicex/satswarm/formula"

// Kind enumerates the message variants of spec.md §4.B.
type Kind int

const (
	// Fork offloads the opposite polarity of a decision to a neighbor.
	Fork Kind = iota
	// UnsatUp reports that a node's whole subtree is unsatisfiable.
	UnsatUp
	// SatUp carries a witness assignment up to the parent, ultimately to
	// the root.
	SatUp
)

func (k Kind) String() string {
	switch k {
	case Fork:
		return "FORK"
	case UnsatUp:
		return "UNSAT_UP"
	case SatUp:
		return "SAT_UP"
	default:
		return "UNKNOWN"
	}
}

// Message is a single node-to-node record. FORK carries the buffer payload
// and SAT_UP the witness; UNSAT_UP carries only its addresses.
// SUBST_MASK/RESET_MASK/VAR_NOT_FOUND live inside
// formula.Stream instead of the general message fabric, since they are
// exchanged with the shared store rather than routed through the
// interconnect (spec.md §4.B groups them for exposition, but spec.md §4.D
// only routes node-addressed traffic).
type Message struct {
	Kind    Kind
	Source  int
	Dest    int
	Forked  ForkPayload
	Witness formula.Assignment
}

// ForkPayload is the FORK payload: a snapshot of the parent's assignment
// buffer, the depth (for stack-size invariants), and the parent's address
// for later UNSAT_UP/SAT_UP routing.
type ForkPayload struct {
	Buffer *formula.Buffer
	Depth  int
	Parent int
}

// New constructs a routed message. source and dest are node-id indices
// into the simulator's flat node array (spec.md §9), never owning
// pointers.
func New(kind Kind, source, dest int) Message {
	return Message{Kind: kind, Source: source, Dest: dest}
}
