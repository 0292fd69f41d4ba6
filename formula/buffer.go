package formula

import "github.com/xDarkicex/satswarm/core"

// TermState is the per-node, per-clause-slot state from spec.md §3.
type TermState int

const (
	// Symbolic means the term's truth value is not yet determined.
	Symbolic TermState = iota
	// Falsified means the literal at this slot evaluates to false.
	Falsified
	// Satisfying means the literal at this slot evaluates to true.
	Satisfying

	// absentSlot marks a slot with no literal (clause narrower than the
	// formula's configured width). For status purposes it is neither
	// satisfying nor symbolic, so it never keeps a clause from being
	// contradicted; no Store mask ever targets it.
	absentSlot TermState = -1
)

// SlotMask is a per-clause, per-slot mask value streamed by the Store.
type SlotMask int

const (
	// Absent leaves the node's term state unchanged.
	Absent SlotMask = iota
	// MatchesSign means the slot's literal shares the queried polarity;
	// the term becomes Satisfying.
	MatchesSign
	// OpposesSign means the slot's literal opposes the queried polarity;
	// the term becomes Falsified.
	OpposesSign
)

// ResetSlot marks whether a clause slot should revert to Symbolic.
type ResetSlot bool

// ClauseStatus is the derived status of a clause given its term row.
type ClauseStatus int

const (
	StatusSymbolic ClauseStatus = iota
	StatusSatisfied
	StatusContradicted
)

// Buffer is a node's exclusively-owned per-clause term-state table (spec.md
// §3 "Assignment buffer").
type Buffer struct {
	formula *Formula
	terms   [][]TermState
}

// Clone deep-copies a buffer; used when a FORK snapshot is taken.
func (b *Buffer) Clone() *Buffer {
	terms := make([][]TermState, len(b.terms))
	for i, row := range b.terms {
		terms[i] = append([]TermState(nil), row...)
	}
	return &Buffer{formula: b.formula, terms: terms}
}

// WithVariable clones b and applies variable=polarity across every clause
// in a single pass, computed directly from the formula's static clause
// list rather than via a Store query. A node uses this to build the
// mirror-polarity snapshot it hands off in a FORK payload: having just
// streamed its own polarity's substitution clause by clause, it already
// knows each clause's literal layout, so building the sibling's view costs
// no extra clause-store cycles (spec.md §9 "shared immutable formula").
func (b *Buffer) WithVariable(variable int, polarity bool) *Buffer {
	clone := b.Clone()
	for i, clause := range clone.formula.Clauses {
		mask := substMask(clause, clone.formula.Width, variable, polarity)
		_, _ = clone.ApplySubst(i, mask)
	}
	return clone
}

// ApplySubst applies a streamed substitution mask to clause idx, returning
// the clause's status after the update.
func (b *Buffer) ApplySubst(idx int, mask []SlotMask) (ClauseStatus, error) {
	row, err := b.row(idx)
	if err != nil {
		return StatusSymbolic, err
	}
	for j, slot := range mask {
		if j >= len(row) {
			break
		}
		switch slot {
		case Absent:
			// unchanged
		case MatchesSign:
			row[j] = Satisfying
		case OpposesSign:
			row[j] = Falsified
		}
	}
	return b.status(row), nil
}

// ApplyReset reverts the touched slots of clause idx back to Symbolic.
func (b *Buffer) ApplyReset(idx int, mask []ResetSlot) error {
	row, err := b.row(idx)
	if err != nil {
		return err
	}
	for j, revert := range mask {
		if j >= len(row) {
			break
		}
		if revert && row[j] != absentSlot {
			row[j] = Symbolic
		}
	}
	return nil
}

// Status returns the derived status of clause idx.
func (b *Buffer) Status(idx int) (ClauseStatus, error) {
	row, err := b.row(idx)
	if err != nil {
		return StatusSymbolic, err
	}
	return b.status(row), nil
}

// AllSatisfied reports whether every clause in the buffer is satisfied,
// the DECIDING -> REPORTING(SAT) predicate of spec.md §4.C.
func (b *Buffer) AllSatisfied() bool {
	for i := range b.terms {
		if b.status(b.terms[i]) != StatusSatisfied {
			return false
		}
	}
	return true
}

func (b *Buffer) status(row []TermState) ClauseStatus {
	allFalsified := true
	for _, t := range row {
		switch t {
		case Satisfying:
			return StatusSatisfied
		case Falsified:
			// keep checking
		case absentSlot:
			// an absent slot can never be satisfying or falsified; it
			// does not prevent contradiction (it contributes nothing).
		default: // Symbolic
			allFalsified = false
		}
	}
	if allFalsified {
		return StatusContradicted
	}
	return StatusSymbolic
}

func (b *Buffer) row(idx int) ([]TermState, error) {
	if idx < 0 || idx >= len(b.terms) {
		return nil, core.NewInvariantError("formula", "Buffer.row", "clause index out of range")
	}
	return b.terms[idx], nil
}
