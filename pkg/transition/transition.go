// Package transition implements the bit-packed transition encoding and
// transition-table representation shared by every decider in this module.
package transition

import (
	"fmt"
)

// Transition is a single bit-packed table entry:
//
//	bit 0:    write symbol (0 or 1)
//	bits 1-4: next state (0 = halt, 1..MaxStates otherwise)
//	bits 6-7: direction tag (distinct values for left, right, undefined)
//	bit 8:    self-referencing cache flag, set once the owning Table has
//	          checked whether this field loops back into itself
//
// Bit 5 is unused padding, mirroring the original 16-bit layout.
type Transition uint16

// Direction is the tape-head movement implied by a transition.
type Direction int8

const (
	DirUndefined Direction = 0
	DirLeft      Direction = -1
	DirRight     Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "L"
	case DirRight:
		return "R"
	default:
		return "-"
	}
}

const (
	bitSymbol    Transition = 0b0000_0000_0000_0001
	bitStateMask Transition = 0b0000_0000_0001_1110
	bitArrayID   Transition = 0b0000_0000_0001_1111
	bitDirMask   Transition = 0b0000_0000_1100_0000
	dirRightBits Transition = 0b0000_0000_1100_0000
	dirLeftBits  Transition = 0b0000_0000_0100_0000
	dirUndefBits Transition = 0b0000_0000_1000_0000
	bitSelfRef   Transition = 0b0000_0001_0000_0000
)

// Symbol write-value constants.
const (
	SymbolZero uint8 = 0
	SymbolOne  uint8 = 1
)

// MaxStates bounds the transition table array. The core halt/cycle fast
// paths only ever use up to 5; the enumerator and pre-decider generalize to 7.
const MaxStates = 7

// Halt is the standard-form undefined halt entry ("---"): no direction,
// no next state, symbol bit unused.
const Halt Transition = dirUndefBits

// Symbol returns the write symbol of the transition.
func (t Transition) Symbol() uint8 { return uint8(t & bitSymbol) }

// IsSymbolOne reports whether the transition writes a 1.
func (t Transition) IsSymbolOne() bool { return t&bitSymbol != 0 }

// IsSymbolZero reports whether the transition writes a 0.
func (t Transition) IsSymbolZero() bool { return t&bitSymbol == 0 }

// State returns the raw next-state value: 0 means halt, otherwise 1..MaxStates
// (state 1 is conventionally "A").
func (t Transition) State() uint8 { return uint8((t & bitStateMask) >> 1) }

// StateX2 returns the state field already shifted into array-id position
// (i.e. state*2, with the symbol bit left at 0).
func (t Transition) StateX2() uint16 { return uint16(t & bitStateMask) }

// ArrayID returns (state<<1)|symbol, the index this transition's *target*
// field would occupy in a table.
func (t Transition) ArrayID() uint16 { return uint16(t & bitArrayID) }

// Direction returns the tape movement of this transition.
func (t Transition) Direction() Direction {
	switch t & bitDirMask {
	case dirRightBits:
		return DirRight
	case dirLeftBits:
		return DirLeft
	default:
		return DirUndefined
	}
}

// IsDirRight reports whether the transition moves right.
func (t Transition) IsDirRight() bool { return t&bitDirMask == dirRightBits }

// IsDirLeft reports whether the transition moves left.
func (t Transition) IsDirLeft() bool { return t&bitDirMask == dirLeftBits }

// IsHalt reports whether this transition is the table's halt entry.
func (t Transition) IsHalt() bool { return t&bitStateMask == 0 }

// IsUnused reports whether this slot has never been assigned.
func (t Transition) IsUnused() bool { return t == 0 }

// HasNextStateA reports whether the transition's next state is state A
// (state index 1). Used by the pre-decider to detect a self-recursive start.
func (t Transition) HasNextStateA() bool { return t.State() == 1 }

// IsSelfRef reports whether this field has been cached as self-referencing:
// taking it leaves (state, symbol) pointing back at the same field.
func (t Transition) IsSelfRef() bool { return t&bitSelfRef != 0 }

// WithSelfRef returns a copy of t with the self-referencing cache bit set.
func (t Transition) WithSelfRef() Transition { return t | bitSelfRef }

// StateToChar renders a state number as its text-format letter: 'Z' for halt
// (state 0), otherwise 'A'+state-1.
func StateToChar(state uint8) byte {
	if state == 0 {
		return 'Z'
	}
	return 'A' + state - 1
}

// Error is returned by New and ParseTable for malformed transition text.
type Error struct {
	Text string
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("transition %q: %s", e.Text, e.Msg) }

// New parses a 3-character standard-format transition, e.g. "1RB" or "---".
func New(text string) (Transition, error) {
	if len(text) != 3 {
		return 0, &Error{text, "must be exactly 3 characters"}
	}
	var tr Transition

	switch text[0] {
	case '0':
		tr |= 0
	case '1':
		tr |= bitSymbol
	case '-':
		// undefined symbol, only valid alongside an undefined direction/state
	default:
		return 0, &Error{text, "invalid symbol character"}
	}

	switch text[1] {
	case 'L':
		tr |= dirLeftBits
	case 'R':
		tr |= dirRightBits
	case '-':
		tr |= dirUndefBits
	default:
		return 0, &Error{text, "invalid direction character"}
	}

	c := text[2]
	switch {
	case c == '-' || c == '0' || c == 'Z':
		// halt: state field stays 0
	case c >= '1' && c <= '9':
		state := c - '0'
		if int(state) > MaxStates {
			return 0, &Error{text, "state number exceeds MaxStates"}
		}
		tr |= Transition(state) << 1
	case c >= 'A' && c <= 'Y':
		state := c - 'A' + 1
		if int(state) > MaxStates {
			return 0, &Error{text, "state letter exceeds MaxStates"}
		}
		tr |= Transition(state) << 1
	default:
		return 0, &Error{text, "invalid state character"}
	}

	return tr, nil
}

// Text renders the transition in standard 3-character format.
func (t Transition) Text() string {
	if t.IsHalt() {
		return "---"
	}
	symCh := byte('0')
	if t.IsSymbolOne() {
		symCh = '1'
	}
	return string([]byte{symCh, t.Direction().String()[0], StateToChar(t.State())})
}

func (t Transition) String() string { return t.Text() }
