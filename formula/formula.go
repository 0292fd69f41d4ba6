package formula

// Formula is the immutable CNF loaded once per benchmark file and shared
// read-only by every node (spec.md §3 "Ownership"). Index by clause ID in
// [0, len(Clauses)) for the canonical iteration order.
type Formula struct {
	NumVars int
	Width   int
	Clauses []Clause
}

// New builds a Formula, validating every clause against width and NumVars.
func New(numVars, width int, clauses []Clause) (*Formula, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	for i := range clauses {
		if err := clauses[i].Validate(width, numVars); err != nil {
			return nil, err
		}
		clauses[i].ID = i
	}
	return &Formula{NumVars: numVars, Width: width, Clauses: clauses}, nil
}

// VariableInRange reports whether v is a valid variable index for this
// formula. The Store uses this to produce VARIABLE_NOT_FOUND.
func (f *Formula) VariableInRange(v int) bool {
	return v >= 1 && v <= f.NumVars
}

// ClauseCount is the canonical C used throughout the spec.
func (f *Formula) ClauseCount() int { return len(f.Clauses) }

// NewBuffer allocates a fresh assignment buffer sized to this formula, with
// every literal slot SYMBOLIC and the slots past a narrower clause's last
// literal marked absent; the root node starts from one at simulator start.
func (f *Formula) NewBuffer() *Buffer {
	terms := make([][]TermState, len(f.Clauses))
	for i, c := range f.Clauses {
		row := make([]TermState, f.Width)
		for j := range row {
			if j < len(c.Literals) {
				row[j] = Symbolic
			} else {
				row[j] = absentSlot
			}
		}
		terms[i] = row
	}
	return &Buffer{formula: f, terms: terms}
}
