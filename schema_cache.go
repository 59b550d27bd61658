package fieldset

import (
	"reflect"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// SchemaCache
///////////////////////////////////////////////////////////////////////////////

// SchemaCache provides thread-safe compute-once memoization of schemas per
// fieldset type, keyed by reflect.Type. Concurrent first accesses for the
// same type race only on entry creation; the factory runs once and every
// caller observes the same complete result, never a torn one.
//
// Invalidate starts a new epoch for a type: the entry is dropped and the
// factory reruns on the next access. Recompute-and-overwrite is the
// intended mutation model, built schemas themselves stay immutable.
type SchemaCache struct {
	cache sync.Map // map[reflect.Type]*schemaCacheEntry
}

// schemaCacheEntry holds the build result for one type. The RWMutex allows
// concurrent reads and makes the factory run exclusive.
type schemaCacheEntry struct {
	mu     sync.RWMutex
	built  bool
	schema *Schema
	err    error
}

// NewSchemaCache creates an empty schema cache.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{}
}

// GetOrBuild returns the schema cached for the type, running factory at
// most once per type per invalidation epoch. A factory error is cached too:
// a broken declaration fails the same way on every access instead of
// rebuilding per request.
func (sc *SchemaCache) GetOrBuild(t reflect.Type, factory func() (*Schema, error)) (*Schema, error) {
	v, ok := sc.cache.Load(t)
	if !ok {
		v, _ = sc.cache.LoadOrStore(t, &schemaCacheEntry{})
	}
	entry := v.(*schemaCacheEntry)

	entry.mu.RLock()
	if entry.built {
		defer entry.mu.RUnlock()
		return entry.schema, entry.err
	}
	entry.mu.RUnlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.built {
		entry.schema, entry.err = factory()
		entry.built = true
	}
	return entry.schema, entry.err
}

// Get returns the cached schema for the type, if one has been built
// successfully.
func (sc *SchemaCache) Get(t reflect.Type) (*Schema, bool) {
	v, ok := sc.cache.Load(t)
	if !ok {
		return nil, false
	}
	entry := v.(*schemaCacheEntry)

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	if !entry.built || entry.err != nil {
		return nil, false
	}
	return entry.schema, true
}

// Invalidate drops the cached schema for the type.
func (sc *SchemaCache) Invalidate(t reflect.Type) {
	sc.cache.Delete(t)
}

// Clear drops every cached schema.
func (sc *SchemaCache) Clear() {
	sc.cache = sync.Map{}
}
