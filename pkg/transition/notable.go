package transition

// NotableMachine identifies one of the well-known champion machines used
// throughout the test suite.
type NotableMachine int

const (
	BB2Max NotableMachine = iota
	BB3Max
	BB4Max
	BB5Max
)

var notableText = map[NotableMachine]string{
	BB2Max: "1RB1LB_1LA1RZ",
	BB3Max: "1RB---_1LB0RC_1LC1LA",
	BB4Max: "1RB1LB_1LA0LC_---1LD_1RD0RA",
	BB5Max: "1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA",
}

// notableSteps records the known maximal step count for each machine, for
// use in tests/documentation; it is not used by the deciders themselves.
var notableSteps = map[NotableMachine]int{
	BB2Max: 6,
	BB3Max: 21,
	BB4Max: 107,
	BB5Max: 47_176_870,
}

// Table returns the parsed transition table for a notable machine. It
// panics on a catalog programming error (the embedded text is malformed),
// mirroring the teacher's init()-time catalog construction in pkg/inst.
func (n NotableMachine) Table() *Table {
	text, ok := notableText[n]
	if !ok {
		panic("transition: unknown notable machine")
	}
	table, err := ParseTable(text)
	if err != nil {
		panic("transition: malformed notable machine catalog entry: " + err.Error())
	}
	return table
}

// Steps returns the known maximal step count for the notable machine.
func (n NotableMachine) Steps() int { return notableSteps[n] }

func (n NotableMachine) String() string {
	switch n {
	case BB2Max:
		return "BB2-MAX"
	case BB3Max:
		return "BB3-MAX"
	case BB4Max:
		return "BB4-MAX"
	case BB5Max:
		return "BB5-MAX"
	default:
		return "unknown"
	}
}
