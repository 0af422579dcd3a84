// Package actions holds the named callbacks scene files reference from call
// steps and state machine side effects.
package actions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
)

var (
	// ErrUnknownAction is returned when a name has no registration.
	ErrUnknownAction = errors.New("unknown action")
	// ErrDuplicateAction is returned when a name is registered twice.
	ErrDuplicateAction = errors.New("action already registered")
)

// Func is a named callback. Args come from the scene file.
type Func func(ctx *sequence.Context, args map[string]any) error

// Metadata describes a registered action.
type Metadata struct {
	Name        string
	Description string
}

type registration struct {
	meta Metadata
	fn   Func
}

// Registry maps action names to callbacks. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]registration
	logger  *logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		actions: make(map[string]registration),
		logger:  log,
	}
}

// Register adds an action.
func (r *Registry) Register(name, description string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("action name is empty")
	}
	if fn == nil {
		return fmt.Errorf("action '%s' has no function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("action '%s': %w", name, ErrDuplicateAction)
	}
	r.actions[name] = registration{meta: Metadata{Name: name, Description: description}, fn: fn}
	return nil
}

// MustRegister panics if the action cannot be registered.
func (r *Registry) MustRegister(name, description string, fn Func) {
	if err := r.Register(name, description, fn); err != nil {
		panic(err)
	}
}

// Get retrieves an action by name.
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("action '%s': %w", name, ErrUnknownAction)
	}
	return reg.fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// List returns metadata for every action, sorted by name.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.actions))
	for _, reg := range r.actions {
		out = append(out, reg.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bind resolves name and fixes its arguments, producing a sequence callback.
func (r *Registry) Bind(name string, args map[string]any) (sequence.CallFunc, error) {
	fn, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return func(ctx *sequence.Context) error {
		return fn(ctx, args)
	}, nil
}
