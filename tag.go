package fieldset

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// This file contains the `marshal` tag declaration surface: deriving a
// Schema from a tagged view struct instead of registering declarations by
// hand on a SchemaBuilder. The tag decoder interprets the subtags and
// produces the same declarations the builder would.
//
// Tag grammar:
//     marshal:"<name> <subtag_list>"
// name:
//     output field name; optional, defaults to the lowercased Go field
//     name; "-" skips the field
// subtag_list:
//     [<subtag>]^* // Space separated
// subtag:
//     attribute:'<source attribute override>'
//   | default:'<default value>'
//   | format:'<formatter name>'        // see FormatterByName
//   | member:'<member name>'           // declares a MemberField
//   | plainkey:'<member name>'         // nested: unembedded key member
//   | plainformat:'<formatter name>'   // nested: codec for the plain key
//   | allownull                        // nested: nil renders as null
//
// A field whose (element) type is a struct carrying marshal tags declares a
// nested fieldset; a slice of such structs declares a list of them. Every
// other field declares a scalar.

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	ErrNotAStruct         = errors.New("fieldset prototype must be a struct or pointer to struct")
	ErrRecursiveSchema    = errors.New("recursive fieldset declaration is not supported")
	ErrUnknownSubTag      = errors.New("unknown subtag in marshal tag")
	ErrUnknownTagFlag     = errors.New("unknown flag in marshal tag")
	ErrUnterminatedSubTag = errors.New("unterminated subtag value in marshal tag")
)

///////////////////////////////////////////////////////////////////////////////
// SchemaOf
///////////////////////////////////////////////////////////////////////////////

// MetaProvider supplies the Meta override layer for a tag-declared
// fieldset. Implement it on the view struct (value or pointer receiver);
// the returned layer merges over DefaultMeta.
type MetaProvider interface {
	FieldsetMeta() Meta
}

var _schemaOfCache = NewSchemaCache()

// SchemaOf derives a Schema from the marshal tags of a view struct. The
// result is memoized per struct type; concurrent first calls build it once.
//
// Declaration errors (malformed tags, unknown formatters, recursive
// nesting) surface here, at declaration time.
func SchemaOf(prototype any) (*Schema, error) {
	t, err := prototypeType(prototype)
	if err != nil {
		return nil, err
	}
	return _schemaOfCache.GetOrBuild(t, func() (*Schema, error) {
		return schemaFromStructType(t, map[reflect.Type]bool{})
	})
}

// MustSchemaOf is SchemaOf for fieldsets declared at package init.
func MustSchemaOf(prototype any) *Schema {
	schema, err := SchemaOf(prototype)
	if err != nil {
		panic(fmt.Sprintf("fieldset: invalid fieldset declaration: %v", err))
	}
	return schema
}

// InvalidateSchemaOf drops the memoized schema for the prototype's type, so
// the next SchemaOf call re-derives it. This is the explicit invalidation
// epoch for tag-declared fieldsets.
func InvalidateSchemaOf(prototype any) {
	if t, err := prototypeType(prototype); err == nil {
		_schemaOfCache.Invalidate(t)
	}
}

func prototypeType(prototype any) (reflect.Type, error) {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrNotAStruct, prototype)
	}
	return t, nil
}

func schemaFromStructType(t reflect.Type, seen map[reflect.Type]bool) (*Schema, error) {
	if seen[t] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveSchema, t.Name())
	}
	seen[t] = true
	defer delete(seen, t)

	builder := NewSchemaBuilder()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}

		tag := field.Tag.Get(MarshalTagPrefix)
		if tag == SkipTagValue {
			continue
		}

		decoded, err := decodeFieldTag(tag)
		if err != nil {
			return nil, fmt.Errorf("error decoding marshal tag for field %s: %w", field.Name, err)
		}

		name := decoded.Name
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		decl, err := declarationFromField(field, decoded, seen)
		if err != nil {
			return nil, fmt.Errorf("error declaring field %s: %w", field.Name, err)
		}

		builder.Field(name, decl)
	}

	if provider, ok := reflect.New(t).Interface().(MetaProvider); ok {
		builder.Meta(provider.FieldsetMeta())
	}

	return builder.Build()
}

func declarationFromField(field reflect.StructField, decoded fieldTag, seen map[reflect.Type]bool) (FieldDeclaration, error) {
	var defaultValue any
	if decoded.HasDefault {
		defaultValue = decoded.Default
	}

	var formatter Formatter
	if decoded.Format != "" {
		var err error
		formatter, err = FormatterByName(decoded.Format)
		if err != nil {
			return nil, err
		}
	}

	elemType := field.Type
	isList := false
	for {
		switch elemType.Kind() {
		case reflect.Pointer:
			elemType = elemType.Elem()
			continue
		case reflect.Slice, reflect.Array:
			isList = true
			elemType = elemType.Elem()
			continue
		}
		break
	}

	if elemType.Kind() == reflect.Struct && structDeclaresFieldset(elemType) {
		nestedSchema, err := schemaFromStructType(elemType, seen)
		if err != nil {
			return nil, err
		}

		var plainFormatter Formatter
		if decoded.PlainFormat != "" {
			plainFormatter, err = FormatterByName(decoded.PlainFormat)
			if err != nil {
				return nil, err
			}
		}

		nested := &NestedField{
			Schema:         StaticSchema(nestedSchema),
			PlainKey:       decoded.PlainKey,
			PlainFormatter: plainFormatter,
			Default:        defaultValue,
			Attribute:      decoded.Attribute,
			AllowNull:      decoded.AllowNull,
		}
		if isList {
			return ListOf(nested), nil
		}
		return nested, nil
	}

	if decoded.Member != "" {
		return &MemberField{
			Member:          decoded.Member,
			Default:         defaultValue,
			Attribute:       decoded.Attribute,
			MemberFormatter: formatter,
		}, nil
	}

	return &Field{
		Attribute: decoded.Attribute,
		Default:   defaultValue,
		Formatter: formatter,
	}, nil
}

// structDeclaresFieldset reports whether any exported field of the struct
// carries a marshal tag. That is what separates a nested fieldset from an
// opaque struct scalar like time.Time or uuid.UUID.
func structDeclaresFieldset(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if _, ok := field.Tag.Lookup(MarshalTagPrefix); ok {
			return true
		}
	}
	return false
}

///////////////////////////////////////////////////////////////////////////////
// Tag Decoding
///////////////////////////////////////////////////////////////////////////////

// fieldTag is the decoded structured representation of one marshal tag.
type fieldTag struct {
	Name        string
	Attribute   string
	Default     string
	HasDefault  bool
	Format      string
	Member      string
	PlainKey    string
	PlainFormat string
	AllowNull   bool
}

// marshalTagName extracts just the output name of a marshal tag, for
// attribute lookup against tagged source structs. Malformed tags report no
// name rather than failing; declaration-time decoding owns error reporting.
func marshalTagName(tag string) (string, bool) {
	decoded, err := decodeFieldTag(tag)
	if err != nil || decoded.Name == "" || decoded.Name == SkipTagValue {
		return "", false
	}
	return decoded.Name, true
}

// decodeFieldTag scans a marshal tag into its structured representation.
// Values may be quoted with single quotes to carry spaces; a bare value
// runs to the next space.
func decodeFieldTag(tag string) (fieldTag, error) {
	var decoded fieldTag

	i := 0
	first := true
	for i < len(tag) {
		// Skip whitespace
		for i < len(tag) && (tag[i] == ' ' || tag[i] == '\t') {
			i++
		}
		if i >= len(tag) {
			break
		}

		// Read the segment key (up to a colon, a space, or the end)
		j := i
		for j < len(tag) && tag[j] != ' ' && tag[j] != '\t' && tag[j] != KeyValueTagDelimiter[0] {
			j++
		}
		segment := tag[i:j]

		if j >= len(tag) || tag[j] != KeyValueTagDelimiter[0] {
			// Bare segment: the leading output name or a flag
			switch {
			case first:
				decoded.Name = segment
			case segment == AllowNullTagFlag:
				decoded.AllowNull = true
			default:
				return fieldTag{}, fmt.Errorf("%w: %s", ErrUnknownTagFlag, segment)
			}
			i = j
			first = false
			continue
		}

		// Key:value segment
		value, next, err := scanSubTagValue(tag, j+1)
		if err != nil {
			return fieldTag{}, fmt.Errorf("%w (subtag %s)", err, segment)
		}
		i = next
		first = false

		switch segment {
		case AttributeSubTagPrefix:
			decoded.Attribute = value
		case DefaultSubTagPrefix:
			decoded.Default = value
			decoded.HasDefault = true
		case FormatSubTagPrefix:
			decoded.Format = value
		case MemberSubTagPrefix:
			decoded.Member = value
		case PlainKeySubTagPrefix:
			decoded.PlainKey = value
		case PlainFormatSubTagPrefix:
			decoded.PlainFormat = value
		default:
			return fieldTag{}, fmt.Errorf("%w: %s", ErrUnknownSubTag, segment)
		}
	}

	return decoded, nil
}

// scanSubTagValue reads one subtag value starting at position start.
// Returns the value and the position after it.
func scanSubTagValue(tag string, start int) (string, int, error) {
	if start < len(tag) && tag[start] == SubTagScopeDelimiter {
		// Quoted value, runs to the closing delimiter
		end := strings.IndexByte(tag[start+1:], SubTagScopeDelimiter)
		if end == -1 {
			return "", 0, ErrUnterminatedSubTag
		}
		end += start + 1
		return tag[start+1 : end], end + 1, nil
	}

	// Bare value, runs to the next space
	end := start
	for end < len(tag) && tag[end] != ' ' && tag[end] != '\t' {
		end++
	}
	return tag[start:end], end, nil
}
