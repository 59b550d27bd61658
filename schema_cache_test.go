package fieldset

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheTestView struct {
	ID int `marshal:"id"`
}

type cacheTestOtherView struct {
	Name string `marshal:"name"`
}

func TestSchemaCacheGetOrBuild(t *testing.T) {
	t.Run("FactoryRunsOnce", func(t *testing.T) {
		cache := NewSchemaCache()
		key := reflect.TypeOf(cacheTestView{})

		calls := 0
		factory := func() (*Schema, error) {
			calls++
			return SchemaOf(cacheTestView{})
		}

		first, err := cache.GetOrBuild(key, factory)
		require.NoError(t, err)
		second, err := cache.GetOrBuild(key, factory)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("ErrorsAreCached", func(t *testing.T) {
		cache := NewSchemaCache()
		key := reflect.TypeOf(cacheTestView{})

		buildFailed := errors.New("build failed")
		calls := 0
		factory := func() (*Schema, error) {
			calls++
			return nil, buildFailed
		}

		_, err := cache.GetOrBuild(key, factory)
		assert.ErrorIs(t, err, buildFailed)
		_, err = cache.GetOrBuild(key, factory)
		assert.ErrorIs(t, err, buildFailed)
		assert.Equal(t, 1, calls)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		cache := NewSchemaCache()

		first, err := cache.GetOrBuild(reflect.TypeOf(cacheTestView{}), func() (*Schema, error) {
			return SchemaOf(cacheTestView{})
		})
		require.NoError(t, err)
		second, err := cache.GetOrBuild(reflect.TypeOf(cacheTestOtherView{}), func() (*Schema, error) {
			return SchemaOf(cacheTestOtherView{})
		})
		require.NoError(t, err)

		assert.NotSame(t, first, second)
	})

	t.Run("ConcurrentFirstAccess", func(t *testing.T) {
		cache := NewSchemaCache()
		key := reflect.TypeOf(cacheTestView{})

		var calls atomic.Int32
		factory := func() (*Schema, error) {
			calls.Add(1)
			return SchemaOf(cacheTestView{})
		}

		const goroutines = 32
		results := make([]*Schema, goroutines)

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				schema, err := cache.GetOrBuild(key, factory)
				assert.NoError(t, err)
				results[slot] = schema
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, schema := range results {
			assert.Same(t, results[0], schema)
		}
	})
}

func TestSchemaCacheGet(t *testing.T) {
	cache := NewSchemaCache()
	key := reflect.TypeOf(cacheTestView{})

	t.Run("MissBeforeBuild", func(t *testing.T) {
		_, ok := cache.Get(key)
		assert.False(t, ok)
	})

	t.Run("HitAfterBuild", func(t *testing.T) {
		built, err := cache.GetOrBuild(key, func() (*Schema, error) {
			return SchemaOf(cacheTestView{})
		})
		require.NoError(t, err)

		cached, ok := cache.Get(key)
		require.True(t, ok)
		assert.Same(t, built, cached)
	})

	t.Run("MissWhenBuildFailed", func(t *testing.T) {
		failKey := reflect.TypeOf(cacheTestOtherView{})
		_, err := cache.GetOrBuild(failKey, func() (*Schema, error) {
			return nil, errors.New("build failed")
		})
		require.Error(t, err)

		_, ok := cache.Get(failKey)
		assert.False(t, ok)
	})
}

func TestSchemaCacheInvalidate(t *testing.T) {
	cache := NewSchemaCache()
	key := reflect.TypeOf(cacheTestView{})
	factory := func() (*Schema, error) {
		return SchemaOf(cacheTestView{})
	}

	_, err := cache.GetOrBuild(key, factory)
	require.NoError(t, err)

	cache.Invalidate(key)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	rebuilt, err := cache.GetOrBuild(key, factory)
	require.NoError(t, err)
	assert.NotNil(t, rebuilt)
}

func TestSchemaCacheClear(t *testing.T) {
	cache := NewSchemaCache()

	_, err := cache.GetOrBuild(reflect.TypeOf(cacheTestView{}), func() (*Schema, error) {
		return SchemaOf(cacheTestView{})
	})
	require.NoError(t, err)
	_, err = cache.GetOrBuild(reflect.TypeOf(cacheTestOtherView{}), func() (*Schema, error) {
		return SchemaOf(cacheTestOtherView{})
	})
	require.NoError(t, err)

	cache.Clear()

	_, ok := cache.Get(reflect.TypeOf(cacheTestView{}))
	assert.False(t, ok)
	_, ok = cache.Get(reflect.TypeOf(cacheTestOtherView{}))
	assert.False(t, ok)
}
