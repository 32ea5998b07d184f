package statemachine

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// ErrInvalidTransition is returned when an event is not accepted in the
// current state.
var ErrInvalidTransition = errors.New("invalid registration transition")

// Interpreter runs one registration attempt. It is not safe for concurrent use;
// each attempt gets its own interpreter.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates and starts an interpreter in the unvalidated state.
func NewInterpreter(machine *statekit.MachineConfig[*Context]) *Interpreter {
	ctx := &Context{Visited: []State{StateUnvalidated}}
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// State returns the current state.
func (i *Interpreter) State() State {
	return State(i.interp.State().Value)
}

// Validate moves an unvalidated request to validated.
func (i *Interpreter) Validate() error {
	return i.send(statekit.Event{Type: EventValidate}, StateValidated)
}

// Resolve moves a validated request to resolved.
func (i *Interpreter) Resolve() error {
	return i.send(statekit.Event{Type: EventResolve}, StateResolved)
}

// Reject moves a non-terminal request to rejected, recording cause.
func (i *Interpreter) Reject(cause error) error {
	return i.send(statekit.Event{Type: EventReject, Payload: cause}, StateRejected)
}

func (i *Interpreter) send(event statekit.Event, want State) error {
	from := i.State()
	if !CanTransition(from, event.Type) {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event.Type, from)
	}
	i.interp.Send(event)
	got := i.State()
	if got != from {
		i.ctx.Visited = append(i.ctx.Visited, got)
	}
	if got != want {
		return fmt.Errorf("%w: %s from %s ended in %s", ErrInvalidTransition, event.Type, from, got)
	}
	return nil
}

// Err returns the recorded rejection cause.
func (i *Interpreter) Err() error {
	return i.ctx.Err
}

// Visited returns the entered states in order.
func (i *Interpreter) Visited() []State {
	return append([]State(nil), i.ctx.Visited...)
}

// IsTerminal returns true once the attempt is resolved or rejected.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Matches checks if the current state matches the given state.
func (i *Interpreter) Matches(state State) bool {
	return i.interp.Matches(statekit.StateID(state))
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}
