package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

// internal (untyped) handler signature.
type rawHandler func(ctx context.Context, c *ConnContext, payload json.RawMessage) error

// Router keeps a map[event]handler, à‑la gin.Engine.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]rawHandler
	validate *validator.Validate
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]rawHandler),
		validate: validator.New(),
	}
}

// Register binds an event to a strongly‑typed handler. A payload that does
// not decode into Req, or fails its validate tags, is an invalid_message.
func Register[Req any](
	r *Router,
	event string,
	h func(ctx context.Context, c *ConnContext, req Req) error,
) {
	if event == "" {
		panic("ws router: empty event")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[event] = func(ctx context.Context, c *ConnContext, payload json.RawMessage) error {
		var req Req
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &req); err != nil {
				return errInvalidMessage
			}
		}
		if err := r.validate.Struct(req); err != nil {
			var invalid *validator.InvalidValidationError
			if !errors.As(err, &invalid) {
				return errInvalidMessage
			}
		}
		return h(ctx, c, req)
	}
}

// dispatch is called by the server’s reader loop.
func (r *Router) dispatch(ctx context.Context, c *ConnContext, env Envelope) error {
	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()
	if !ok {
		return errUnknownEvent
	}
	return h(ctx, c, env.Payload)
}
