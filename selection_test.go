package fieldset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionParser(t *testing.T) {
	parser := NewSelectionParser([]string{"a", "b"})

	t.Run("EmptyStringYieldsEmptySet", func(t *testing.T) {
		selected, err := parser.Parse("")
		require.NoError(t, err)
		assert.Empty(t, selected)
	})

	t.Run("SplitsOnCommas", func(t *testing.T) {
		selected, err := parser.Parse("a,b")
		require.NoError(t, err)
		assert.True(t, selected.Has("a"))
		assert.True(t, selected.Has("b"))
		assert.Len(t, selected, 2)
	})

	t.Run("DuplicateTokensCollapse", func(t *testing.T) {
		selected, err := parser.Parse("a,b,a")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, selected.Sorted())
	})

	t.Run("UnknownTokensFail", func(t *testing.T) {
		_, err := parser.Parse("a,z")
		require.Error(t, err)

		var unknownErr *UnknownFieldsError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, []string{"z"}, unknownErr.Unknown)
		assert.Equal(t, "Unknown fields: z", unknownErr.Error())
	})

	t.Run("UnknownTokensAreSorted", func(t *testing.T) {
		_, err := parser.Parse("z,a,y,x")
		var unknownErr *UnknownFieldsError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, []string{"x", "y", "z"}, unknownErr.Unknown)
		assert.Equal(t, "Unknown fields: x, y, z", unknownErr.Error())
	})

	t.Run("NonStringValueFails", func(t *testing.T) {
		_, err := parser.Parse(42)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSelectionNotString))
	})

	t.Run("EmptyStringYieldsEmptySetForAnyVocabulary", func(t *testing.T) {
		for _, valid := range [][]string{nil, {}, {"x"}, {"x", "y.z"}} {
			selected, err := NewSelectionParser(valid).Parse("")
			require.NoError(t, err)
			assert.Empty(t, selected)
		}
	})

	t.Run("DottedPathsValidateLikeAnyToken", func(t *testing.T) {
		dotted := NewSelectionParser([]string{"owner", "owner.id", "owner.email"})

		selected, err := dotted.Parse("owner.id,owner.email")
		require.NoError(t, err)
		assert.Len(t, selected, 2)

		_, err = dotted.Parse("owner.name")
		var unknownErr *UnknownFieldsError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, []string{"owner.name"}, unknownErr.Unknown)
	})
}

func TestStringSet(t *testing.T) {
	t.Run("IntersectAndDiff", func(t *testing.T) {
		a := NewStringSet("x", "y", "z")
		b := NewStringSet("y", "z", "w")

		assert.ElementsMatch(t, []string{"y", "z"}, a.Intersect(b).Sorted())
		assert.ElementsMatch(t, []string{"x"}, a.Diff(b).Sorted())
	})

	t.Run("SortedIsDeterministic", func(t *testing.T) {
		s := NewStringSet("c", "a", "b")
		assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())
	})

	t.Run("NilSetReads", func(t *testing.T) {
		var s StringSet
		assert.False(t, s.Has("a"))
		assert.Empty(t, s.Sorted())
	})
}
