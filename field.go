package fieldset

///////////////////////////////////////////////////////////////////////////////
// FieldDeclaration Interface
///////////////////////////////////////////////////////////////////////////////

// Shape is the output shape a declaration reports: a scalar value, a nested
// object, or a list of nested objects.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeNested
	ShapeNestedList
)

// FieldDeclaration is the capability every declared output field satisfies:
// it can format a value from a source object and it can report its output
// shape. It is the explicit replacement for a structural "has format and
// output" check; the concrete kind (scalar, member, nested, list) is chosen
// at declaration time, never inferred at render time.
type FieldDeclaration interface {
	// Output renders the value for the output field `name` from source.
	// The name doubles as the source attribute unless the declaration
	// carries an attribute override. A missing attribute is not an error;
	// it resolves to the declaration's default.
	Output(name string, source any) (any, error)

	// Shape reports the declaration's output shape.
	Shape() Shape
}

///////////////////////////////////////////////////////////////////////////////
// Field
///////////////////////////////////////////////////////////////////////////////

// Field is the basic scalar declaration: the output value is the source
// attribute's value, optionally passed through a Formatter.
type Field struct {
	Attribute string    // source attribute override; empty means the output name
	Default   any       // value used when the attribute is absent or nil
	Formatter Formatter // optional wire codec for the extracted value
}

func (f *Field) Output(name string, source any) (any, error) {
	value, ok := attrValue(source, sourceAttribute(f.Attribute, name))
	if !ok || isNilValue(value) {
		return f.Default, nil
	}
	if f.Formatter != nil {
		return f.Formatter.Format(value)
	}
	return value, nil
}

func (f *Field) Shape() Shape { return ShapeScalar }

///////////////////////////////////////////////////////////////////////////////
// MemberField
///////////////////////////////////////////////////////////////////////////////

// MemberField extracts a single member from the attribute's value. Use this
// when the attribute is an object but only one of its members belongs in the
// output, e.g. rendering `owner` as `owner.id`.
//
// MemberField also satisfies Formatter: Format takes the object and returns
// the (optionally sub-formatted) member value. That is what makes it usable
// as the plain-key rendering of a nested field.
type MemberField struct {
	Member          string    // member name looked up on the attribute's value
	Default         any       // value used when the attribute or member is absent
	Attribute       string    // source attribute override; empty means the output name
	MemberFormatter Formatter // optional codec chained over the member value
}

func (mf *MemberField) Output(name string, source any) (any, error) {
	value, ok := attrValue(source, sourceAttribute(mf.Attribute, name))
	if !ok || isNilValue(value) {
		return mf.Default, nil
	}
	return mf.Format(value)
}

// Format extracts the configured member from value. Absent members resolve
// to the default, never to an error; the access is duck-typed, not
// schema-checked.
func (mf *MemberField) Format(value any) (any, error) {
	member, ok := attrValue(value, mf.Member)
	if !ok || isNilValue(member) {
		return mf.Default, nil
	}
	if mf.MemberFormatter != nil {
		return mf.MemberFormatter.Format(member)
	}
	return member, nil
}

func (mf *MemberField) Shape() Shape { return ShapeScalar }

// sourceAttribute resolves the attribute a declaration reads: the override
// when set, the output name otherwise.
func sourceAttribute(override, name string) string {
	if override != "" {
		return override
	}
	return name
}
