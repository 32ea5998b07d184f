package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// recordFailure stores the rejection cause carried by the event payload.
func recordFailure(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if err, ok := event.Payload.(error); ok {
		(*ctx).Err = err
	}
}
