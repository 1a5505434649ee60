// Package predecider implements the static elimination rules applied to a
// transition table before any step-by-step simulation: spec §4.4.
package predecider

import "github.com/oisee/bbdecide/pkg/transition"

// Reason names the elimination rule that rejected a machine.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonStartRecursive
	ReasonNotStartStateBRight
	ReasonNotExactlyOneHaltCondition
	ReasonOnlyOneDirection
	ReasonSimpleStartCycle
	ReasonWritesOnlyZero
	ReasonNotAllStatesUsed
)

func (r Reason) String() string {
	switch r {
	case ReasonStartRecursive:
		return "StartRecursive"
	case ReasonNotStartStateBRight:
		return "NotStartStateBRight"
	case ReasonNotExactlyOneHaltCondition:
		return "NotExactlyOneHaltCondition"
	case ReasonOnlyOneDirection:
		return "OnlyOneDirection"
	case ReasonSimpleStartCycle:
		return "SimpleStartCycle"
	case ReasonWritesOnlyZero:
		return "WritesOnlyZero"
	case ReasonNotAllStatesUsed:
		return "NotAllStatesUsed"
	default:
		return "None"
	}
}

// Outcome is the result of running the pre-decider on a table.
type Outcome struct {
	// Halted is true if A0 itself is the halt entry (Halts(1)).
	Halted bool
	// Eliminated is true if a structural rule rejected the machine.
	Eliminated bool
	Reason     Reason
}

// NoDecision reports whether neither Halted nor Eliminated were set, i.e.
// the table must be handed to a real decider.
func (o Outcome) NoDecision() bool { return !o.Halted && !o.Eliminated }

// transitionsForA0 lists the two starting transitions the strict form of
// the pre-decider requires (A0 must be 0RB or 1RB — every other start state
// and direction choice is equivalent to one of these by symmetry).
var transitionsForA0 = func() [2]transition.Transition {
	t0, err := transition.New("0RB")
	if err != nil {
		panic(err)
	}
	t1, err := transition.New("1RB")
	if err != nil {
		panic(err)
	}
	return [2]transition.Transition{t0, t1}
}()

// Run applies the elimination rules in the fixed order spec §4.4 defines,
// returning on the first rule that decides the machine. When strict is
// true, the additional "A0 must be 0RB or 1RB" rule also applies — this is
// the form used on machines arriving from the full enumerator or an
// external file, where the reduced enumerator's own construction hasn't
// already guaranteed it (spec §9, "Pre-decider as a separate stage or
// inline").
func Run(strict bool, t *transition.Table) Outcome {
	if t.TransitionStart().IsHalt() {
		return Outcome{Halted: true}
	}

	if strict {
		start := t.TransitionStart()
		if start != transitionsForA0[0] && start != transitionsForA0[1] {
			return Outcome{Eliminated: true, Reason: ReasonNotStartStateBRight}
		}
	} else if checkStartTransitionIsRecursive(t) {
		return Outcome{Eliminated: true, Reason: ReasonStartRecursive}
	}

	used := t.TransitionsUsed()

	if countHoldTransitions(used) != 1 {
		return Outcome{Eliminated: true, Reason: ReasonNotExactlyOneHaltCondition}
	}

	if checkOnlyOneDirection(used) {
		return Outcome{Eliminated: true, Reason: ReasonOnlyOneDirection}
	}

	if checkSimpleStartCycle(t) {
		return Outcome{Eliminated: true, Reason: ReasonSimpleStartCycle}
	}

	if checkOnlyZeroWrites(used) {
		return Outcome{Eliminated: true, Reason: ReasonWritesOnlyZero}
	}

	if checkNotAllStatesUsed(t) {
		return Outcome{Eliminated: true, Reason: ReasonNotAllStatesUsed}
	}

	return Outcome{}
}

// checkStartTransitionIsRecursive eliminates 0LA/1LA/0RA/1RA as A0: if the
// start transition's next state is A itself, the machine never leaves its
// first field and runs forever.
func checkStartTransitionIsRecursive(t *transition.Table) bool {
	return t.TransitionStart().HasNextStateA()
}

// countHoldTransitions counts halt entries among the used fields.
func countHoldTransitions(used []transition.Transition) int {
	n := 0
	for _, tr := range used {
		if tr.IsHalt() {
			n++
		}
	}
	return n
}

// checkOnlyOneDirection reports whether every column-0 field (even indices)
// moves in the same direction (or halts): then the tape only ever reads 0,
// so the second column is irrelevant and the machine cannot be a maximal
// candidate.
func checkOnlyOneDirection(used []transition.Transition) bool {
	allRight := true
	allLeft := true
	for i := 0; i < len(used); i += 2 {
		tr := used[i]
		if !(tr.IsDirRight() || tr.IsHalt()) {
			allRight = false
		}
		if !(tr.IsDirLeft() || tr.IsHalt()) {
			allLeft = false
		}
	}
	return allRight || allLeft
}

// checkOnlyZeroWrites reports whether every column-0 field writes 0: the
// tape then never has a 1 written to it on a 0-read, so (combined with the
// blank initial tape) no 1 can ever be read either, and the machine runs
// forever without ever producing the champion's signature tape.
func checkOnlyZeroWrites(used []transition.Transition) bool {
	for i := 0; i < len(used); i += 2 {
		if used[i].IsSymbolOne() {
			return false
		}
	}
	return true
}

// checkSimpleStartCycle detects the 8 cases where the first two fields
// alone (A0 and whatever A0 points to) force an immediate periodic tape —
// see original_source's decider/pre_decider.rs for the case enumeration
// this mirrors exactly.
func checkSimpleStartCycle(t *transition.Table) bool {
	start := t.TransitionStart()
	startState2 := int(start.StateX2())
	second := t.Transition(startState2)

	if second.HasNextStateA() {
		if start.IsSymbolOne() && second.Direction() == start.Direction() {
			// cases 3, 4
			return true
		}
		if second.Direction() == start.Direction() || second.IsSymbolZero() {
			// cases 1, 2, 5
			return true
		}
		return false
	}

	if start.IsSymbolZero() && int(second.StateX2()) == startState2 {
		return true
	}

	return false
}

// checkNotAllStatesUsed follows reachability from A0 (the pre-decider's own
// explicit-stack DFS, avoiding recursion per spec §9's "encode as a small
// struct with primitive fields" guidance for deciders, reused here for the
// traversal too) and reports whether fewer than 2*NStates fields are
// actually reachable, meaning some state could be removed without changing
// behavior and so this table cannot be a maximal candidate.
func checkNotAllStatesUsed(t *transition.Table) bool {
	n := t.NStates()
	var usedCol0, usedCol1 [transition.MaxStates + 1]bool

	a0Next := int(t.TransitionStart().State())
	usedCol0[a0Next] = true
	fieldsUsed := 1

	second0 := t.TransitionForStateSymbol(a0Next, 0)
	if second0.IsHalt() {
		return true
	}
	secondNext := int(second0.State())

	third := t.TransitionForStateSymbol(secondNext, 0)
	if third.IsHalt() {
		return true
	}

	usedCol0[secondNext] = true
	usedCol1[secondNext] = true
	if secondNext == a0Next {
		fieldsUsed++
	} else {
		fieldsUsed += 2
	}

	stack := make([]int, 0, 2*n)
	stack = append(stack, int(third.State()))
	s1 := t.TransitionForStateSymbol(secondNext, 1)
	if int(s1.State()) != int(third.State()) && !s1.IsHalt() {
		stack = append(stack, int(s1.State()))
	}

	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !usedCol0[state] {
			s := t.TransitionForStateSymbol(state, 0)
			if !s.IsHalt() && int(s.State()) != state {
				stack = append(stack, int(s.State()))
			}
			usedCol0[state] = true
			fieldsUsed++
		}
		if !usedCol1[state] {
			s := t.TransitionForStateSymbol(state, 1)
			if !s.IsHalt() && int(s.State()) != state {
				stack = append(stack, int(s.State()))
			}
			usedCol1[state] = true
			fieldsUsed++
		}
	}

	return fieldsUsed < n*2
}
