package connector

import (
	"fmt"
	"sync"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

// Registry holds registered connectors. Registration happens once at
// process start; lookups are read-only and safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register adds a connector under its name. Duplicate names are rejected.
func (r *Registry) Register(c Connector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := c.Name()
	if name == "" {
		return fmt.Errorf("connector name must not be empty")
	}
	if _, exists := r.connectors[name]; exists {
		return fmt.Errorf("connector %q already registered", name)
	}
	r.connectors[name] = c
	r.order = append(r.order, name)
	return nil
}

// Get returns the connector registered under name, or nil.
func (r *Registry) Get(name string) Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connectors[name]
}

// All returns every registered connector in registration order.
func (r *Registry) All() []Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Connector, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.connectors[name])
	}
	return result
}

// Configured returns connectors whose IsConfigured reports true.
func (r *Registry) Configured() []Connector {
	result := []Connector{}
	for _, c := range r.All() {
		if c.IsConfigured() {
			result = append(result, c)
		}
	}
	return result
}

// SupportingType returns configured connectors that declare support for the
// given assessment type.
func (r *Registry) SupportingType(t models.AssessmentType) []Connector {
	result := []Connector{}
	for _, c := range r.Configured() {
		for _, supported := range c.SupportedTypes() {
			if supported == t {
				result = append(result, c)
				break
			}
		}
	}
	return result
}
