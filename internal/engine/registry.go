package engine

import (
	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
)

// Target is the focused input a store gets bound to
type Target interface {
	ID() string
	Text() string
	Caret() int
}

// Constructor returns a store for the target, or nil when it does not apply
type Constructor func(target Target, ev keys.Event) completion.Store

// Registry holds store constructors in registration order
type Registry struct {
	names        []string
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register appends a constructor under name. Registering a name twice is a
// no-op and returns false.
func (r *Registry) Register(name string, c Constructor) bool {
	if c == nil {
		return false
	}
	if _, exists := r.constructors[name]; exists {
		return false
	}
	r.names = append(r.names, name)
	r.constructors[name] = c
	return true
}

// Names returns the registered names in order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered constructors
func (r *Registry) Len() int {
	return len(r.names)
}

// Match tries each constructor in order and returns the first non-nil store
func (r *Registry) Match(target Target, ev keys.Event) (string, completion.Store) {
	for _, name := range r.names {
		if store := r.constructors[name](target, ev); store != nil {
			return name, store
		}
	}
	return "", nil
}
