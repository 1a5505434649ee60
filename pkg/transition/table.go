package transition

import "strings"

// Table is a fixed-size transition table for an N-state, 2-symbol machine.
// Entries are indexed by array_id = state*2 + symbol, with A0 at index 2;
// indices 0 and 1 are reserved and never read. N-states, and whether the
// table has been checked for a self-referencing transition, live in
// explicit fields rather than being packed into index 0 — see DESIGN.md's
// redesign note: the self-ref cache must not alias the next-state bits.
type Table struct {
	transitions    [2 * (MaxStates + 1)]Transition
	nStates        int
	selfRefChecked bool
	hasSelfRef     bool
}

// NewTable returns an all-unused table for the given number of states.
func NewTable(nStates int) *Table {
	return &Table{nStates: nStates}
}

// NStates returns the number of states in this table.
func (t *Table) NStates() int { return t.nStates }

// Transition returns the transition stored at the given array id.
func (t *Table) Transition(arrayID int) Transition { return t.transitions[arrayID] }

// SetTransition stores tr at the given array id and invalidates the cached
// self-ref check (the table may be mutated during construction/enumeration).
func (t *Table) SetTransition(arrayID int, tr Transition) {
	t.transitions[arrayID] = tr
	t.selfRefChecked = false
}

// TransitionForStateSymbol looks up the field for (state, symbol). state is
// 1-based (1 == A).
func (t *Table) TransitionForStateSymbol(state int, symbol uint8) Transition {
	return t.transitions[state*2+int(symbol)]
}

// TransitionStart returns A0, the machine's starting field.
func (t *Table) TransitionStart() Transition { return t.transitions[2] }

// TransitionsUsed returns the slice of fields actually addressable given
// NStates (array ids 2..2*nStates+1 inclusive).
func (t *Table) TransitionsUsed() []Transition {
	return t.transitions[2 : 2+t.nStates*2]
}

// Transitions returns the full backing array, including unused padding.
func (t *Table) Transitions() [2 * (MaxStates + 1)]Transition { return t.transitions }

// HasSelfReferencingTransition reports whether any used field points back
// at itself (same state, same write symbol) — the condition that allows the
// tape engine's run-length acceleration. The result is computed once and
// cached; matching fields also get their own per-transition self-ref bit set.
func (t *Table) HasSelfReferencingTransition() bool {
	if t.selfRefChecked {
		return t.hasSelfRef
	}
	t.hasSelfRef = false
	for i := range t.nStates * 2 {
		arrayID := i + 2
		tr := t.transitions[arrayID]
		if tr.IsHalt() || tr.IsUnused() {
			continue
		}
		if int(tr.ArrayID()) == arrayID {
			t.transitions[arrayID] = tr.WithSelfRef()
			t.hasSelfRef = true
		}
	}
	t.selfRefChecked = true
	return t.hasSelfRef
}

// ParseTable parses the standard TM text format, e.g.
// "1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA" (BB5-MAX).
func ParseTable(s string) (*Table, error) {
	groups := strings.Split(s, "_")
	n := len(groups)
	if n == 0 || n > MaxStates {
		return nil, &Error{s, "invalid number of states"}
	}
	table := NewTable(n)
	for i, g := range groups {
		if len(g) != 6 {
			return nil, &Error{s, "each state must have exactly two 3-character transitions"}
		}
		tr0, err := New(g[0:3])
		if err != nil {
			return nil, err
		}
		tr1, err := New(g[3:6])
		if err != nil {
			return nil, err
		}
		table.transitions[2+i*2] = tr0
		table.transitions[2+i*2+1] = tr1
	}
	return table, nil
}

// Text renders the table in standard TM text format.
func (t *Table) Text() string {
	var sb strings.Builder
	for i := range t.nStates {
		if i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteString(t.transitions[2+i*2].Text())
		sb.WriteString(t.transitions[2+i*2+1].Text())
	}
	return sb.String()
}

func (t *Table) String() string { return t.Text() }

// Clone returns a deep copy (the array is a value type, so a struct copy
// suffices).
func (t *Table) Clone() *Table {
	clone := *t
	return &clone
}

// variantPosition returns this transition's 0-based position within the
// fixed per-field variant ordering used by CanonicalID: states ascending,
// then direction {L,R}, then symbol {0,1}; halt is the last variant.
func variantPosition(tr Transition) uint64 {
	if tr.IsHalt() {
		return 0 // overwritten by caller with the halt position (4*n)
	}
	stateIdx := uint64(tr.State()) - 1
	dirIdx := uint64(0)
	if tr.IsDirRight() {
		dirIdx = 1
	}
	symIdx := uint64(tr.Symbol())
	return stateIdx*4 + dirIdx*2 + symIdx
}

// CanonicalID computes the positional-encoding identifier described in
// spec §6.4: each of the table's 2N fields contributes its variant position
// (out of P=4N+1 possible variants) times P^e, where e is the field index
// counted forward (0..2N-1) or backward (2N-1..0) depending on forward.
func (t *Table) CanonicalID(forward bool) uint64 {
	n := uint64(t.nStates)
	p := 4*n + 1
	haltPos := 4 * n

	var id uint64
	for i := range t.nStates * 2 {
		tr := t.transitions[2+i]
		pos := haltPos
		if !tr.IsHalt() {
			pos = variantPosition(tr)
		}
		e := uint64(i)
		if !forward {
			e = uint64(t.nStates*2-1-i)
		}
		id += pos * ipow(p, e)
	}
	return id
}

func ipow(base, exp uint64) uint64 {
	result := uint64(1)
	for range exp {
		result *= base
	}
	return result
}
