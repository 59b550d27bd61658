package fieldset

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	ErrEmptyFieldName    = errors.New("field name cannot be empty")
	ErrDuplicateField    = errors.New("a field with this name is already declared in this schema")
	ErrReservedFieldName = errors.New("field name cannot contain the path separator")
	ErrNilDeclaration    = errors.New("field declaration cannot be nil")
)

///////////////////////////////////////////////////////////////////////////////
// Meta
///////////////////////////////////////////////////////////////////////////////

// Meta is the per-schema configuration block: which fields and embeds are
// selected when the caller sends nothing, and under which query parameter
// names the selections arrive.
//
// For the default slices, nil means "unset" (all direct fields, respectively
// all nested fields, become the default), while an explicitly empty slice
// means "no defaults at all". The distinction is deliberate and matches the
// selection fallback rule.
type Meta struct {
	DefaultFields   []string
	DefaultEmbed    []string
	FieldsParamName string
	EmbedParamName  string
}

// DefaultMeta is the base configuration layer every schema starts from.
func DefaultMeta() Meta {
	return Meta{
		FieldsParamName: DefaultFieldsParamName,
		EmbedParamName:  DefaultEmbedParamName,
	}
}

// MergeMeta composes configuration layers key by key. Later layers win for
// every option they actually set (non-nil slices, non-empty names); options
// a layer leaves unset fall through to earlier layers. This is the explicit
// replacement for ancestor-chain Meta resolution: list the layers from most
// base to most derived.
func MergeMeta(layers ...Meta) Meta {
	var merged Meta
	for _, layer := range layers {
		if layer.DefaultFields != nil {
			merged.DefaultFields = layer.DefaultFields
		}
		if layer.DefaultEmbed != nil {
			merged.DefaultEmbed = layer.DefaultEmbed
		}
		if layer.FieldsParamName != "" {
			merged.FieldsParamName = layer.FieldsParamName
		}
		if layer.EmbedParamName != "" {
			merged.EmbedParamName = layer.EmbedParamName
		}
	}
	return merged
}

///////////////////////////////////////////////////////////////////////////////
// Schema
///////////////////////////////////////////////////////////////////////////////

// Schema is the static registry of one fieldset type: its declarations in
// declaration order, the subset that is nestable, the merged Meta, and the
// memoized recursive path vocabularies.
//
// A Schema is immutable after Build and safe to share across concurrent
// requests. "Mutating" a fieldset means building a new Schema (or letting a
// SchemaRegistry invalidate and rebuild it); the recursive path sets are
// recomputed on the next access of the new instance.
type Schema struct {
	names  []string
	fields map[string]FieldDeclaration
	nested []string
	meta   Meta

	defaultFields StringSet
	defaultEmbed  StringSet

	allPathsOnce    sync.Once
	allPaths        []string
	nestedPathsOnce sync.Once
	nestedPaths     []string
}

// FieldNames returns the declared output names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Declaration returns the declaration registered under name.
func (s *Schema) Declaration(name string) (FieldDeclaration, bool) {
	decl, ok := s.fields[name]
	return decl, ok
}

// NestedNames returns the declared names whose declaration is nestable,
// in declaration order.
func (s *Schema) NestedNames() []string {
	names := make([]string, len(s.nested))
	copy(names, s.nested)
	return names
}

// Meta returns the schema's merged configuration.
func (s *Schema) Meta() Meta {
	return s.meta
}

// AllFieldPaths returns every addressable path of this schema: the direct
// names plus, for every nested name, "{name}.{path}" for every path the
// nested schema addresses. Computed once per schema; consumers treat the
// result as a set, order carries no meaning.
func (s *Schema) AllFieldPaths() []string {
	s.allPathsOnce.Do(func() {
		paths := make([]string, 0, len(s.names))
		paths = append(paths, s.names...)
		for _, name := range s.nested {
			nestedSchema := s.nestedSchemaOf(name)
			if nestedSchema == nil {
				continue
			}
			for _, childPath := range nestedSchema.AllFieldPaths() {
				paths = append(paths, name+PathSeparator+childPath)
			}
		}
		s.allPaths = paths
	})
	return s.allPaths
}

// NestedFieldPaths returns every embeddable path: the nested names plus the
// recursive dotted paths into their schemas' own nested names.
func (s *Schema) NestedFieldPaths() []string {
	s.nestedPathsOnce.Do(func() {
		paths := make([]string, 0, len(s.nested))
		paths = append(paths, s.nested...)
		for _, name := range s.nested {
			nestedSchema := s.nestedSchemaOf(name)
			if nestedSchema == nil {
				continue
			}
			for _, childPath := range nestedSchema.NestedFieldPaths() {
				paths = append(paths, name+PathSeparator+childPath)
			}
		}
		s.nestedPaths = paths
	})
	return s.nestedPaths
}

// DefaultFieldSet returns the fields selected when the caller sends no
// fields parameter.
func (s *Schema) DefaultFieldSet() StringSet {
	return s.defaultFields
}

// DefaultEmbedSet returns the nested fields embedded when the caller sends
// no embed parameter.
func (s *Schema) DefaultEmbedSet() StringSet {
	return s.defaultEmbed
}

func (s *Schema) nestedSchemaOf(name string) *Schema {
	nestable, ok := s.fields[name].(NestableDeclaration)
	if !ok {
		return nil
	}
	return nestable.NestedSchema()
}

///////////////////////////////////////////////////////////////////////////////
// SchemaBuilder
///////////////////////////////////////////////////////////////////////////////

// SchemaBuilder is the registration step that produces an immutable Schema.
// Declarations keep their registration order. Field and Meta record the
// first declaration error and Build reports it, so call sites can chain
// without per-call error checks.
type SchemaBuilder struct {
	names  []string
	fields map[string]FieldDeclaration
	metas  []Meta
	err    error
}

func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		fields: make(map[string]FieldDeclaration),
	}
}

// Field registers a declaration under its output name.
func (b *SchemaBuilder) Field(name string, decl FieldDeclaration) *SchemaBuilder {
	if b.err != nil {
		return b
	}

	switch {
	case name == "":
		b.err = ErrEmptyFieldName
	case strings.Contains(name, PathSeparator):
		b.err = fmt.Errorf("%w: %s", ErrReservedFieldName, name)
	case decl == nil:
		b.err = fmt.Errorf("%w: %s", ErrNilDeclaration, name)
	default:
		if _, exists := b.fields[name]; exists {
			b.err = fmt.Errorf("%w: %s", ErrDuplicateField, name)
			return b
		}
		b.names = append(b.names, name)
		b.fields[name] = decl
	}

	return b
}

// Meta appends a configuration override layer. Layers merge in the order
// they are appended, most recent wins per option, on top of DefaultMeta.
func (b *SchemaBuilder) Meta(meta Meta) *SchemaBuilder {
	if b.err != nil {
		return b
	}
	b.metas = append(b.metas, meta)
	return b
}

// Build materializes the schema. Declaration errors (empty, duplicate or
// reserved names, nil declarations) surface here, at declaration time,
// never at request time.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}

	layers := make([]Meta, 0, len(b.metas)+1)
	layers = append(layers, DefaultMeta())
	layers = append(layers, b.metas...)
	meta := MergeMeta(layers...)

	schema := &Schema{
		names:  make([]string, len(b.names)),
		fields: make(map[string]FieldDeclaration, len(b.fields)),
		meta:   meta,
	}
	copy(schema.names, b.names)
	for name, decl := range b.fields {
		schema.fields[name] = decl
	}

	for _, name := range schema.names {
		if _, ok := schema.fields[name].(NestableDeclaration); ok {
			schema.nested = append(schema.nested, name)
		}
	}

	if meta.DefaultFields == nil {
		schema.defaultFields = NewStringSet(schema.names...)
	} else {
		schema.defaultFields = NewStringSet(meta.DefaultFields...)
	}
	if meta.DefaultEmbed == nil {
		schema.defaultEmbed = NewStringSet(schema.nested...)
	} else {
		schema.defaultEmbed = NewStringSet(meta.DefaultEmbed...)
	}

	return schema, nil
}

// MustBuild is Build for schemas declared at package init, where a
// declaration error is a programming error.
func (b *SchemaBuilder) MustBuild() *Schema {
	schema, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("fieldset: invalid schema declaration: %v", err))
	}
	return schema
}
