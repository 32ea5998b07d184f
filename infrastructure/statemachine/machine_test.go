package statemachine

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/go-cmp/cmp"
)

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()

	machine, err := NewRegistrationMachine()
	if err != nil {
		t.Fatalf("NewRegistrationMachine() error = %v", err)
	}
	return NewInterpreter(machine)
}

func TestInterpreter_Start(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t)
	defer interp.Stop()

	if interp.State() != StateUnvalidated {
		t.Errorf("State() = %s, want unvalidated", interp.State())
	}
	if !interp.Matches(StateUnvalidated) {
		t.Error("Matches(unvalidated) = false")
	}
	if interp.IsTerminal() {
		t.Error("IsTerminal() = true at start")
	}
}

func TestInterpreter_HappyPath(t *testing.T) {
	t.Parallel()

	interp := newTestInterpreter(t)
	defer interp.Stop()

	if err := interp.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := interp.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if interp.State() != StateResolved {
		t.Errorf("State() = %s, want resolved", interp.State())
	}
	if !interp.IsTerminal() {
		t.Error("IsTerminal() = false after resolve")
	}
	want := []State{StateUnvalidated, StateValidated, StateResolved}
	if diff := cmp.Diff(want, interp.Visited()); diff != "" {
		t.Errorf("Visited() mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpreter_Reject(t *testing.T) {
	t.Parallel()

	cause := errors.New("include and exclude are mutually exclusive")

	tests := []struct {
		name   string
		before func(*Interpreter) error
	}{
		{name: "from unvalidated", before: func(*Interpreter) error { return nil }},
		{name: "from validated", before: func(i *Interpreter) error { return i.Validate() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			interp := newTestInterpreter(t)
			defer interp.Stop()

			if err := tt.before(interp); err != nil {
				t.Fatalf("setup error = %v", err)
			}
			if err := interp.Reject(cause); err != nil {
				t.Fatalf("Reject() error = %v", err)
			}
			if interp.State() != StateRejected {
				t.Errorf("State() = %s, want rejected", interp.State())
			}
			if !errors.Is(interp.Err(), cause) {
				t.Errorf("Err() = %v, want %v", interp.Err(), cause)
			}
		})
	}
}

func TestInterpreter_InvalidTransitions(t *testing.T) {
	t.Parallel()

	t.Run("resolve before validate", func(t *testing.T) {
		t.Parallel()

		interp := newTestInterpreter(t)
		defer interp.Stop()

		if err := interp.Resolve(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Resolve() error = %v, want ErrInvalidTransition", err)
		}
		if interp.State() != StateUnvalidated {
			t.Errorf("State() = %s, want unvalidated", interp.State())
		}
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		t.Parallel()

		interp := newTestInterpreter(t)
		defer interp.Stop()

		if err := interp.Reject(errors.New("bad")); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if err := interp.Validate(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Validate() error = %v, want ErrInvalidTransition", err)
		}
		if err := interp.Reject(errors.New("again")); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Reject() error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from State
		want map[string]bool
	}{
		{from: StateUnvalidated, want: map[string]bool{"VALIDATE": true, "RESOLVE": false, "REJECT": true}},
		{from: StateValidated, want: map[string]bool{"VALIDATE": false, "RESOLVE": true, "REJECT": true}},
		{from: StateResolved, want: map[string]bool{"VALIDATE": false, "RESOLVE": false, "REJECT": false}},
		{from: StateRejected, want: map[string]bool{"VALIDATE": false, "RESOLVE": false, "REJECT": false}},
	}

	for _, tt := range tests {
		for event, want := range tt.want {
			if got := CanTransition(tt.from, statekit.EventType(event)); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, event, got, want)
			}
		}
		if got := tt.from.IsTerminal(); got != (tt.from == StateResolved || tt.from == StateRejected) {
			t.Errorf("%s.IsTerminal() = %v", tt.from, got)
		}
	}
}
