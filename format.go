package fieldset

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	ErrUnknownFormatter       = errors.New("no built-in formatter registered under this name")
	ErrUnsupportedFormatValue = errors.New("value cannot be converted by this formatter")
)

///////////////////////////////////////////////////////////////////////////////
// Formatter Interface
///////////////////////////////////////////////////////////////////////////////

// Formatter converts an extracted attribute value into a wire scalar.
// Formatters are the pluggable codec step of a scalar declaration: the
// declaration extracts the raw value, the Formatter decides its output shape.
//
// A Formatter must be side-effect-free and safe for concurrent use; the same
// instance is shared by every request rendering the declaring schema.
//
// A nil input value passes through as nil. Deciding between nil and a
// configured default happens in the declaration, not in the Formatter.
type Formatter interface {
	Format(value any) (any, error)
}

// FormatterByName resolves a built-in formatter from its tag-grammar name.
//
// The time formatter accepts an optional layout suffix separated by '|',
// e.g. "time|2006-01-02". Without a layout it renders RFC 3339.
func FormatterByName(name string) (Formatter, error) {
	base, arg, _ := strings.Cut(name, FormatterNameSeparator)

	switch base {
	case StringFormatterName:
		return StringFormatter{}, nil
	case IntegerFormatterName:
		return IntegerFormatter{}, nil
	case FloatFormatterName:
		return FloatFormatter{}, nil
	case BooleanFormatterName:
		return BooleanFormatter{}, nil
	case UUIDFormatterName:
		return UUIDFormatter{}, nil
	case TimeFormatterName:
		return TimeFormatter{Layout: arg}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormatter, name)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Built-in Formatters
///////////////////////////////////////////////////////////////////////////////

// StringFormatter renders any scalar as a string.
//
// Currently supports:
//   - string and []byte
//   - integer, unsigned, float, and bool kinds
//   - encoding.TextMarshaler support for custom types
//   - fmt.Stringer support for custom types
type StringFormatter struct{}

func (StringFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	default:
		return nil, fmt.Errorf("%w: %T as string", ErrUnsupportedFormatValue, value)
	}
}

// IntegerFormatter renders a value as int64, with overflow checking for
// unsigned inputs and strconv parsing for string inputs.
type IntegerFormatter struct{}

func (IntegerFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if s, ok := value.(string); ok {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error converting value to int: %w", err)
		}
		return parsed, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	default:
		return nil, fmt.Errorf("%w: %T as int", ErrUnsupportedFormatValue, value)
	}
}

// FloatFormatter renders a value as float64.
type FloatFormatter struct{}

func (FloatFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if s, ok := value.(string); ok {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("error converting value to float: %w", err)
		}
		return parsed, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	default:
		return nil, fmt.Errorf("%w: %T as float", ErrUnsupportedFormatValue, value)
	}
}

// BooleanFormatter renders a value as bool. Strings go through
// strconv.ParseBool, numeric values render as value != 0.
type BooleanFormatter struct{}

func (BooleanFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if s, ok := value.(string); ok {
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("error converting value to bool: %w", err)
		}
		return parsed, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	default:
		return nil, fmt.Errorf("%w: %T as bool", ErrUnsupportedFormatValue, value)
	}
}

// UUIDFormatter renders a value as a canonical UUID string.
//
// Currently supports:
//   - uuid.UUID and [16]byte
//   - string (re-parsed, so non-canonical forms normalize)
//   - []byte of length 16
type UUIDFormatter struct{}

func (UUIDFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("error converting value to uuid: %w", err)
		}
		return parsed.String(), nil
	case []byte:
		parsed, err := uuid.FromBytes(v)
		if err != nil {
			return nil, fmt.Errorf("error converting value to uuid: %w", err)
		}
		return parsed.String(), nil
	default:
		return nil, fmt.Errorf("%w: %T as uuid", ErrUnsupportedFormatValue, value)
	}
}

// TimeFormatter renders a time.Time as a string in Layout.
// An empty Layout means RFC 3339.
type TimeFormatter struct {
	Layout string
}

func (tf TimeFormatter) Format(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	layout := tf.Layout
	if layout == "" {
		layout = time.RFC3339
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(layout), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.Format(layout), nil
	default:
		return nil, fmt.Errorf("%w: %T as time", ErrUnsupportedFormatValue, value)
	}
}
