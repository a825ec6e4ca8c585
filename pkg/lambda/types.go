package lambda

import (
	"context"
	"encoding/json"

	"smarthome-skill-bridge/internal/models"
)

// HandlerFunc handles one raw directive envelope. The returned event is
// what the platform receives; a non-nil error is reserved for failures
// that must surface as an invocation error.
type HandlerFunc func(ctx context.Context, raw json.RawMessage) (*models.Event, error)

// Middleware wraps a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies middlewares so that the first one listed runs outermost
func Chain(h HandlerFunc, middlewares ...Middleware) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
