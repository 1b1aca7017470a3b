// Package registry maps function names to the handlers that implement them.
// The table is built once at startup and handed to the connection manager;
// handlers marshal any host-state access through the dispatcher themselves.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Result is the successful outcome of a handler: a human-readable message
// and an optional structured payload.
type Result struct {
	Text string
	Data any
}

// Handler implements one named capability. It receives the request's params
// and returns a result or an error; errors become success=false responses.
type Handler func(ctx context.Context, params map[string]any) (Result, error)

// UnknownFunctionError reports a dispatch against a name that was never
// registered.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

// Registry is the function dispatch table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   zerolog.Logger
}

// New creates an empty registry.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger.With().Str("component", "registry").Logger(),
	}
}

// Register adds a handler under name. Duplicate registration is a
// programming error and is rejected.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("register: empty function name")
	}
	if h == nil {
		return fmt.Errorf("register %q: nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("register %q: already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// MustRegister is Register for the startup path, where a duplicate name can
// only be a coding mistake.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch looks up name and invokes its handler. An unregistered name
// yields an *UnknownFunctionError without invoking anything. Handler panics
// are caught here and converted to errors; nothing a handler does may
// propagate into the receive loop.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (res Result, err error) {
	r.mu.RLock()
	h, exists := r.handlers[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, &UnknownFunctionError{Name: name}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("function", name).Interface("panic", rec).Msg("Handler panicked")
			res = Result{}
			err = fmt.Errorf("handler %q panicked: %v", name, rec)
		}
	}()

	return h(ctx, params)
}
