package fieldset

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryRequest(t *testing.T, rawQuery string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodGet, "http://api.test/records?"+rawQuery, nil)
	require.NoError(t, err)
	return r
}

func jsonRequest(t *testing.T, rawQuery string, body string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, "http://api.test/records?"+rawQuery, strings.NewReader(body))
	require.NoError(t, err)
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	return r
}

func TestRequestDecoderArgument(t *testing.T) {
	t.Run("QueryParameter", func(t *testing.T) {
		rd := NewRequestDecoder(queryRequest(t, "fields=id,name"))

		value, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id,name", value)
	})

	t.Run("AbsentEverywhere", func(t *testing.T) {
		rd := NewRequestDecoder(queryRequest(t, "fields=id"))

		_, ok, err := rd.Argument("embedd")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("JSONBodyFallback", func(t *testing.T) {
		rd := NewRequestDecoder(jsonRequest(t, "", `{"fields": "id,name"}`))

		value, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id,name", value)
	})

	t.Run("QueryWinsOverBody", func(t *testing.T) {
		rd := NewRequestDecoder(jsonRequest(t, "fields=id", `{"fields": "name"}`))

		value, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id", value)
	})

	t.Run("NonJSONBodyIgnored", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "http://api.test/records", strings.NewReader("fields=id"))
		require.NoError(t, err)
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rd := NewRequestDecoder(r)

		_, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("BodyIsRestoredAfterReading", func(t *testing.T) {
		raw := `{"fields": "id", "query": "hello"}`
		r := jsonRequest(t, "", raw)
		rd := NewRequestDecoder(r)

		_, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		require.True(t, ok)

		replay, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, raw, string(replay))
	})

	t.Run("EmptyJSONBody", func(t *testing.T) {
		r, err := http.NewRequest(http.MethodPost, "http://api.test/records", nil)
		require.NoError(t, err)
		r.Header.Set("Content-Type", "application/json")
		rd := NewRequestDecoder(r)

		_, ok, err := rd.Argument("fields")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRequestDecoderSelection(t *testing.T) {
	parser := NewSelectionParser([]string{"id", "name", "owner"})

	t.Run("FromQuery", func(t *testing.T) {
		rd := NewRequestDecoder(queryRequest(t, "fields=name,owner"))

		selected, err := rd.Selection("fields", parser)
		require.NoError(t, err)
		assert.Equal(t, NewStringSet("name", "owner"), selected)
	})

	t.Run("FromBody", func(t *testing.T) {
		rd := NewRequestDecoder(jsonRequest(t, "", `{"fields": "id"}`))

		selected, err := rd.Selection("fields", parser)
		require.NoError(t, err)
		assert.Equal(t, NewStringSet("id"), selected)
	})

	t.Run("AbsentParsesAsEmpty", func(t *testing.T) {
		rd := NewRequestDecoder(queryRequest(t, ""))

		selected, err := rd.Selection("fields", parser)
		require.NoError(t, err)
		assert.Empty(t, selected)
	})

	t.Run("UnknownSelectorFails", func(t *testing.T) {
		rd := NewRequestDecoder(queryRequest(t, "fields=id,bogus"))

		_, err := rd.Selection("fields", parser)
		var unknown *UnknownFieldsError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []string{"bogus"}, unknown.Unknown)
	})
}
