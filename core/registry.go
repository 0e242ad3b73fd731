// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the Registry, the catalog of every schema known to an
// application, looked up by model name.
package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandroluk/golemfilter/filter"
)

// ErrDuplicateModel is returned when two different schemas are registered
// under the same model name.
var ErrDuplicateModel = errors.New("duplicate model name")

// Registry maps model names to schemas.
//
// Names are unique: registering a second schema under a taken name fails, so
// lookups are never ambiguous. Registry is safe for concurrent use.
type Registry struct {
	mutex    sync.RWMutex
	byName   map[string]*SchemaCore
	nameList []string
}

var _ filter.Registry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*SchemaCore)}
}

// Register adds schemas to the registry. Registering the same schema twice
// is a no-op.
//
// Example:
//
//	registry := core.NewRegistry()
//	if err := registry.Register(&customerSchema.SchemaCore, &orderSchema.SchemaCore); err != nil {
//		return err
//	}
func (r *Registry) Register(schemas ...*SchemaCore) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, schema := range schemas {
		existing, ok := r.byName[schema.Name()]
		if ok && existing != schema {
			return fmt.Errorf("%w: `%s`", ErrDuplicateModel, schema.Name())
		}
		if ok {
			continue
		}
		r.byName[schema.Name()] = schema
		r.nameList = append(r.nameList, schema.Name())
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(schemas ...*SchemaCore) *Registry {
	if err := r.Register(schemas...); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the model registered under name.
func (r *Registry) Lookup(name string) (filter.Model, bool) {
	schema, ok := r.Schema(name)
	if !ok {
		return nil, false
	}
	return schema, true
}

// Schema returns the schema registered under name.
func (r *Registry) Schema(name string) (*SchemaCore, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	schema, ok := r.byName[name]
	return schema, ok
}

// Names returns the registered model names in registration order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]string(nil), r.nameList...)
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.nameList)
}
