package fieldset

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFormatter(t *testing.T) {
	cases := []struct {
		name     string
		value    any
		expected any
	}{
		{"String", "abc", "abc"},
		{"Bytes", []byte("abc"), "abc"},
		{"Int", 42, "42"},
		{"Uint", uint8(7), "7"},
		{"Float", 1.5, "1.5"},
		{"Bool", true, "true"},
		{"Nil", nil, nil},
		{"Stringer", uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"), "123e4567-e89b-12d3-a456-426614174000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := StringFormatter{}.Format(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, value)
		})
	}

	t.Run("UnsupportedValueFails", func(t *testing.T) {
		_, err := StringFormatter{}.Format(struct{}{})
		assert.ErrorIs(t, err, ErrUnsupportedFormatValue)
	})
}

func TestIntegerFormatter(t *testing.T) {
	t.Run("IntKinds", func(t *testing.T) {
		value, err := IntegerFormatter{}.Format(int32(42))
		require.NoError(t, err)
		assert.Equal(t, int64(42), value)
	})

	t.Run("ParsesStrings", func(t *testing.T) {
		value, err := IntegerFormatter{}.Format("42")
		require.NoError(t, err)
		assert.Equal(t, int64(42), value)
	})

	t.Run("MalformedStringFails", func(t *testing.T) {
		_, err := IntegerFormatter{}.Format("forty-two")
		assert.Error(t, err)
	})

	t.Run("TruncatesFloats", func(t *testing.T) {
		value, err := IntegerFormatter{}.Format(3.9)
		require.NoError(t, err)
		assert.Equal(t, int64(3), value)
	})

	t.Run("UnsignedOverflowFails", func(t *testing.T) {
		_, err := IntegerFormatter{}.Format(uint64(1) << 63)
		assert.Error(t, err)
	})
}

func TestFloatFormatter(t *testing.T) {
	value, err := FloatFormatter{}.Format(3)
	require.NoError(t, err)
	assert.Equal(t, float64(3), value)

	value, err = FloatFormatter{}.Format("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, value)

	_, err = FloatFormatter{}.Format(true)
	assert.ErrorIs(t, err, ErrUnsupportedFormatValue)
}

func TestBooleanFormatter(t *testing.T) {
	value, err := BooleanFormatter{}.Format("true")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = BooleanFormatter{}.Format(0)
	require.NoError(t, err)
	assert.Equal(t, false, value)

	value, err = BooleanFormatter{}.Format(uint(3))
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestUUIDFormatter(t *testing.T) {
	canonical := "123e4567-e89b-12d3-a456-426614174000"
	id := uuid.MustParse(canonical)

	t.Run("UUIDValue", func(t *testing.T) {
		value, err := UUIDFormatter{}.Format(id)
		require.NoError(t, err)
		assert.Equal(t, canonical, value)
	})

	t.Run("ByteArray", func(t *testing.T) {
		value, err := UUIDFormatter{}.Format([16]byte(id))
		require.NoError(t, err)
		assert.Equal(t, canonical, value)
	})

	t.Run("StringNormalizes", func(t *testing.T) {
		value, err := UUIDFormatter{}.Format("123E4567E89B12D3A456426614174000")
		require.NoError(t, err)
		assert.Equal(t, canonical, value)
	})

	t.Run("MalformedStringFails", func(t *testing.T) {
		_, err := UUIDFormatter{}.Format("not-a-uuid")
		assert.Error(t, err)
	})
}

func TestTimeFormatter(t *testing.T) {
	instant := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	t.Run("DefaultLayoutIsRFC3339", func(t *testing.T) {
		value, err := TimeFormatter{}.Format(instant)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01T12:30:00Z", value)
	})

	t.Run("CustomLayout", func(t *testing.T) {
		value, err := TimeFormatter{Layout: "2006-01-02"}.Format(instant)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", value)
	})

	t.Run("NilPointerRendersNil", func(t *testing.T) {
		value, err := TimeFormatter{}.Format((*time.Time)(nil))
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}

func TestFormatterByName(t *testing.T) {
	t.Run("ResolvesBuiltins", func(t *testing.T) {
		for _, name := range []string{
			StringFormatterName, IntegerFormatterName, FloatFormatterName,
			BooleanFormatterName, UUIDFormatterName, TimeFormatterName,
		} {
			formatter, err := FormatterByName(name)
			require.NoError(t, err, name)
			assert.NotNil(t, formatter)
		}
	})

	t.Run("TimeLayoutSuffix", func(t *testing.T) {
		formatter, err := FormatterByName("time|2006-01-02")
		require.NoError(t, err)

		value, err := formatter.Format(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", value)
	})

	t.Run("UnknownNameFails", func(t *testing.T) {
		_, err := FormatterByName("decimal")
		assert.ErrorIs(t, err, ErrUnknownFormatter)
	})
}
