package fieldset

///////////////////////////////////////////////////////////////////////////////
// Nestable Capability
///////////////////////////////////////////////////////////////////////////////

// SchemaProvider supplies a nested schema on demand. Providers keep schema
// declaration order-independent: a fieldset can reference one that is built
// later, as long as it is available by the time a plan is built. Cyclic
// references between schemas are not supported (path discovery would not
// terminate) and are a declaration error by contract.
type SchemaProvider func() *Schema

// StaticSchema wraps an already built schema as a provider.
func StaticSchema(schema *Schema) SchemaProvider {
	return func() *Schema { return schema }
}

// NestedOptions are the render parameters forwarded when a nested field is
// embedded: which attribute holds the nested object, what to emit when it is
// absent, and whether a nil nested value renders as null instead of an
// object of defaults.
type NestedOptions struct {
	Attribute string
	Default   any
	AllowNull bool
}

// NestableDeclaration is the capability that marks a declaration as
// embeddable. Satisfied by NestedField and by NestedListField, which
// delegates to its element.
type NestableDeclaration interface {
	FieldDeclaration

	// KeyField returns the plain-key rendering of this field, or nil when
	// no plain key is configured (the field then has no unembedded
	// representation and renders null unless embedded).
	KeyField() *MemberField

	// NestedSchema returns the schema used when this field is embedded.
	NestedSchema() *Schema

	// NestedOptions returns the render parameters for the embedded form.
	NestedOptions() NestedOptions
}

///////////////////////////////////////////////////////////////////////////////
// NestedField
///////////////////////////////////////////////////////////////////////////////

// NestedField nests one fieldset into another. When the caller embeds the
// field, the nested object is rendered through the nested schema; otherwise
// the field renders as the PlainKey member of the nested object (usually an
// id), optionally passed through PlainFormatter.
type NestedField struct {
	Schema         SchemaProvider // schema used for the embedded form
	PlainKey       string         // member used for the unembedded form; empty means none
	PlainFormatter Formatter      // optional codec for the plain key value
	Default        any            // value used when the attribute is absent
	Attribute      string         // source attribute override; empty means the output name
	AllowNull      bool           // nil nested value renders as null when embedded
}

// Nested declares a nested field over an already built schema.
func Nested(schema *Schema, plainKey string) *NestedField {
	return &NestedField{Schema: StaticSchema(schema), PlainKey: plainKey}
}

func (nf *NestedField) KeyField() *MemberField {
	if nf.PlainKey == "" {
		return nil
	}
	return &MemberField{
		Member:          nf.PlainKey,
		Default:         nf.Default,
		Attribute:       nf.Attribute,
		MemberFormatter: nf.PlainFormatter,
	}
}

func (nf *NestedField) NestedSchema() *Schema {
	if nf.Schema == nil {
		return nil
	}
	return nf.Schema()
}

func (nf *NestedField) NestedOptions() NestedOptions {
	return NestedOptions{
		Attribute: nf.Attribute,
		Default:   nf.Default,
		AllowNull: nf.AllowNull,
	}
}

// Output renders the unembedded representation: the plain key value, or
// null when no plain key is configured.
func (nf *NestedField) Output(name string, source any) (any, error) {
	key := nf.KeyField()
	if key == nil {
		return nil, nil
	}
	return key.Output(name, source)
}

func (nf *NestedField) Shape() Shape { return ShapeNested }

///////////////////////////////////////////////////////////////////////////////
// NestedListField
///////////////////////////////////////////////////////////////////////////////

// NestedListField wraps a NestedField so the attribute is treated as a
// collection: embedding renders a list of nested objects, the unembedded
// form renders a list of plain key values. Schema and key-field access
// delegate to the element declaration.
type NestedListField struct {
	Element *NestedField
}

// ListOf declares a list of nested fieldsets.
func ListOf(element *NestedField) *NestedListField {
	return &NestedListField{Element: element}
}

func (nl *NestedListField) KeyField() *MemberField {
	return nl.Element.KeyField()
}

func (nl *NestedListField) NestedSchema() *Schema {
	return nl.Element.NestedSchema()
}

func (nl *NestedListField) NestedOptions() NestedOptions {
	return nl.Element.NestedOptions()
}

// Output renders the unembedded representation: a list with the plain key
// of every element, or null when no plain key is configured.
func (nl *NestedListField) Output(name string, source any) (any, error) {
	key := nl.KeyField()
	if key == nil {
		return nil, nil
	}

	opts := nl.NestedOptions()
	collection, ok := attrValue(source, sourceAttribute(opts.Attribute, name))
	if !ok || isNilValue(collection) {
		if opts.AllowNull {
			return nil, nil
		}
		return []any{}, nil
	}

	elements, err := collectionElements(collection)
	if err != nil {
		return nil, err
	}

	keys := make([]any, 0, len(elements))
	for _, element := range elements {
		value, err := key.Format(element)
		if err != nil {
			return nil, err
		}
		keys = append(keys, value)
	}
	return keys, nil
}

func (nl *NestedListField) Shape() Shape { return ShapeNestedList }
