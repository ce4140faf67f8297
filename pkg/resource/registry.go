package resource

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores resource configuration by name. It is safe for concurrent
// use and a nil *Registry answers every query with defaults.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

// NewRegistry builds a registry pre-populated with resources.
func NewRegistry(resources ...Resource) (*Registry, error) {
	reg := &Registry{resources: make(map[string]Resource)}
	for _, res := range resources {
		if err := reg.Register(res); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds or replaces the configuration for a resource.
func (r *Registry) Register(res Resource) error {
	if r == nil {
		return fmt.Errorf("resource: registry is nil")
	}
	normalised, err := res.Normalize()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resources == nil {
		r.resources = make(map[string]Resource)
	}
	r.resources[normalised.Name] = normalised
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(res Resource) {
	if err := r.Register(res); err != nil {
		panic(err)
	}
}

// Merge copies every resource of other into r. Entries in other win.
func (r *Registry) Merge(other *Registry) error {
	if other == nil {
		return nil
	}
	for _, name := range other.Names() {
		res, _ := other.Resource(name)
		if err := r.Register(res); err != nil {
			return err
		}
	}
	return nil
}

// Resource returns the configuration registered under name.
func (r *Registry) Resource(name string) (Resource, bool) {
	if r == nil {
		return Resource{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	if !ok {
		return Resource{}, false
	}
	if len(res.Relationships) > 0 {
		rels := make(map[string]Relationship, len(res.Relationships))
		for field, rel := range res.Relationships {
			rels[field] = rel
		}
		res.Relationships = rels
	}
	return res, true
}

// Names lists the registered resources sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relationship reports whether field of resource is a configured foreign key.
func (r *Registry) Relationship(resource, field string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.resources[resource].Relationships[field]
	return rel, ok
}

// IdentifierField returns the identifier field of resource, defaulting to id.
func (r *Registry) IdentifierField(resource string) string {
	if r == nil {
		return DefaultIdentifierField
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if field := r.resources[resource].IdentifierField; field != "" {
		return field
	}
	return DefaultIdentifierField
}

// DisplayField returns the field used to label records of resource when they
// are referenced from another resource. It falls back to the identifier.
func (r *Registry) DisplayField(resource string) string {
	if r != nil {
		r.mu.RLock()
		field := r.resources[resource].DisplayField
		r.mu.RUnlock()
		if field != "" {
			return field
		}
	}
	return r.IdentifierField(resource)
}
