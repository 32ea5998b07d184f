// Package statemachine provides the statekit statechart that drives tool
// selection from an unvalidated request to a resolved or rejected outcome.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// State is a registration state.
type State string

// Registration states. Resolved and rejected are terminal.
const (
	StateUnvalidated State = "unvalidated"
	StateValidated   State = "validated"
	StateResolved    State = "resolved"
	StateRejected    State = "rejected"
)

// IsTerminal returns true for states with no outgoing transitions.
func (s State) IsTerminal() bool {
	return s == StateResolved || s == StateRejected
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Registration events.
const (
	EventValidate statekit.EventType = "VALIDATE"
	EventResolve  statekit.EventType = "RESOLVE"
	EventReject   statekit.EventType = "REJECT"
)

// Context carries one registration attempt through the machine.
type Context struct {
	// Err is the reason for rejection.
	Err error

	// Visited records entered states in order.
	Visited []State
}

const (
	stateUnvalidated = statekit.StateID(StateUnvalidated)
	stateValidated   = statekit.StateID(StateValidated)
	stateResolved    = statekit.StateID(StateResolved)
	stateRejected    = statekit.StateID(StateRejected)
)

// transitions lists the events accepted in each state.
var transitions = map[State]map[statekit.EventType]State{
	StateUnvalidated: {
		EventValidate: StateValidated,
		EventReject:   StateRejected,
	},
	StateValidated: {
		EventResolve: StateResolved,
		EventReject:  StateRejected,
	},
}

// NewRegistrationMachine creates the registration statechart.
func NewRegistrationMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("registration").
		WithInitial(stateUnvalidated).
		WithContext(&Context{}).
		WithAction("recordFailure", recordFailure).
		WithGuard("noFailure", guardNoFailure).
		State(stateUnvalidated).
			On(EventValidate).Target(stateValidated).Guard("noFailure").
			On(EventReject).Target(stateRejected).Do("recordFailure").
			Done().
		State(stateValidated).
			On(EventResolve).Target(stateResolved).Guard("noFailure").
			On(EventReject).Target(stateRejected).Do("recordFailure").
			Done().
		State(stateResolved).
			Final().
			Done().
		State(stateRejected).
			Final().
			Done().
		Build()
}

// CanTransition reports whether event is accepted in state.
func CanTransition(from State, event statekit.EventType) bool {
	_, ok := transitions[from][event]
	return ok
}
