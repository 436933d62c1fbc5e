package callflow

// EscalationStep is the next move of the escalation machine after a dial
// outcome or when entering at a given index.
type EscalationStep int

const (
	// StepDial: dial the roster entry at the returned index.
	StepDial EscalationStep = iota
	// StepExhausted: every callable human was tried; play the failure
	// notice and hang up. A terminal outcome, not an error.
	StepExhausted
	// StepHangup: a dial completed; the call is over.
	StepHangup
)

// NextAfterDial decides the transition out of Escalating(seed, index)
// once the dial at index reported completed or not. It is a pure
// function of its inputs so the machine can be tested without any call
// control in the loop.
func NextAfterDial(rosterLen, index int, completed bool) (next int, step EscalationStep) {
	if completed {
		return index, StepHangup
	}
	return EnterEscalation(rosterLen, index+1)
}

// EnterEscalation decides what happens on entering Escalating at index.
func EnterEscalation(rosterLen, index int) (int, EscalationStep) {
	if index >= rosterLen {
		return index, StepExhausted
	}
	return index, StepDial
}
