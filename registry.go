package fieldset

import (
	"errors"
	"fmt"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	ErrSchemaAlreadyRegistered = errors.New("a fieldset with this name is already registered")
	ErrSchemaNotRegistered     = errors.New("no fieldset registered under this name")
)

///////////////////////////////////////////////////////////////////////////////
// SchemaRegistry
///////////////////////////////////////////////////////////////////////////////

// SchemaBuilderFunc produces a schema on demand. Registered builders run
// lazily: a fieldset is built on its first lookup, not at registration, so
// registration order does not matter for fieldsets that reference each
// other through providers.
type SchemaBuilderFunc func() (*Schema, error)

// SchemaRegistry maps fieldset names to schemas. Built schemas are cached;
// Invalidate drops the cached schema so the registered builder runs again
// on the next lookup (the rebuild-on-demand mutation model).
type SchemaRegistry struct {
	mu       sync.RWMutex
	builders map[string]SchemaBuilderFunc
	schemas  map[string]*Schema
}

func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		builders: make(map[string]SchemaBuilderFunc),
		schemas:  make(map[string]*Schema),
	}
}

// Register adds a named fieldset builder. Registering a name twice is an
// error; use Invalidate to rebuild, not re-registration.
func (r *SchemaRegistry) Register(name string, builder SchemaBuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("%w: %s", ErrSchemaAlreadyRegistered, name)
	}
	r.builders[name] = builder
	return nil
}

// RegisterSchema registers an already built schema under a name.
func (r *SchemaRegistry) RegisterSchema(name string, schema *Schema) error {
	return r.Register(name, func() (*Schema, error) { return schema, nil })
}

// Schema returns the schema registered under name, building and caching it
// on first use. Concurrent first lookups may race to build; the winner's
// result is kept and results are equivalent, since builders are pure.
func (r *SchemaRegistry) Schema(name string) (*Schema, error) {
	r.mu.RLock()
	if schema, ok := r.schemas[name]; ok {
		r.mu.RUnlock()
		return schema, nil
	}
	builder, registered := r.builders[name]
	r.mu.RUnlock()

	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotRegistered, name)
	}

	schema, err := builder()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.schemas[name]; ok {
		return cached, nil
	}
	r.schemas[name] = schema
	return schema, nil
}

// Invalidate drops the cached schema for name. The next lookup reruns the
// registered builder.
func (r *SchemaRegistry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schemas, name)
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _globalRegistry *SchemaRegistry = nil

func init() {
	_globalRegistry = NewSchemaRegistry()
}

// Package-level functions that delegate to the global registry

// Register registers a named fieldset builder with the global registry.
func Register(name string, builder SchemaBuilderFunc) error {
	return _globalRegistry.Register(name, builder)
}

// RegisterSchema registers a built schema with the global registry.
func RegisterSchema(name string, schema *Schema) error {
	return _globalRegistry.RegisterSchema(name, schema)
}

// Lookup returns a schema from the global registry.
func Lookup(name string) (*Schema, error) {
	return _globalRegistry.Schema(name)
}

// Invalidate drops a cached schema from the global registry.
func Invalidate(name string) {
	_globalRegistry.Invalidate(name)
}
