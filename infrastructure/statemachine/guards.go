package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// guardNoFailure blocks forward transitions once a failure is recorded.
func guardNoFailure(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.Err == nil
}
