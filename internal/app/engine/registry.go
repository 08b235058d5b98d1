package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Creator builds an engine instance from its settings block.
type Creator func(settings map[string]interface{}) (Engine, error)

var (
	creatorsMu sync.RWMutex
	creators   = make(map[string]Creator)
)

// RegisterCreator registers an engine constructor under its name. Engine
// packages call this from init; main blank-imports them.
func RegisterCreator(name string, creator Creator) {
	creatorsMu.Lock()
	defer creatorsMu.Unlock()
	if _, exists := creators[name]; exists {
		panic(fmt.Sprintf("engine %q registered twice", name))
	}
	creators[name] = creator
}

// GetCreator returns the constructor registered under name.
func GetCreator(name string) (Creator, error) {
	creatorsMu.RLock()
	defer creatorsMu.RUnlock()
	creator, exists := creators[name]
	if !exists {
		return nil, fmt.Errorf("engine %q not registered", name)
	}
	return creator, nil
}

// RegisteredNames lists the registered engine names, sorted.
func RegisteredNames() []string {
	creatorsMu.RLock()
	defer creatorsMu.RUnlock()
	names := lo.Keys(creators)
	sort.Strings(names)
	return names
}

// Registry holds built engine instances keyed by name.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Add registers a built engine instance.
func (r *Registry) Add(name string, e Engine) error {
	if name == "" {
		return fmt.Errorf("engine name cannot be empty")
	}
	if e == nil {
		return fmt.Errorf("engine cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[name]; exists {
		return fmt.Errorf("engine %q already added", name)
	}
	r.engines[name] = e
	return nil
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, exists := r.engines[name]
	if !exists {
		return nil, fmt.Errorf("engine %q not available", name)
	}
	return e, nil
}

// Names lists the built engines, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.engines)
	sort.Strings(names)
	return names
}
