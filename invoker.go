package fieldset

import (
	"net/http"
)

///////////////////////////////////////////////////////////////////////////////
// Marshaller
///////////////////////////////////////////////////////////////////////////////

// HandlerFunc is the business-logic shape the marshaller wraps. A handler
// returns either a bare payload or a Response tuple; the marshaller renders
// the payload and passes everything else through untouched.
type HandlerFunc func(r *http.Request) (any, error)

// Response is the tuple-style handler result: a payload plus transport
// passthrough. Code and Headers are not interpreted by the marshaller and
// come back unchanged on the marshalled result.
type Response struct {
	Data    any
	Code    int
	Headers http.Header
}

// Marshaller orchestrates one endpoint's marshalling: it binds the two
// selection parsers to the schema's Meta-configured parameter names and
// turns a handler's payload into the selected output mapping.
//
// A Marshaller is built once per endpoint and is safe for concurrent
// requests; everything per-request lives in the RequestDecoder and the
// RenderPlan.
type Marshaller struct {
	schema       *Schema
	fieldsParam  string
	embedParam   string
	fieldsParser *SelectionParser
	embedParser  *SelectionParser
}

// MarshallerOpts carries per-endpoint overrides. A zero value defers to
// the schema's Meta and the package defaults.
type MarshallerOpts struct {
	// FieldsParamName and EmbedParamName override the schema Meta's
	// selection parameter names when set.
	FieldsParamName string
	EmbedParamName  string
}

func NewMarshaller(schema *Schema, opts MarshallerOpts) *Marshaller {
	meta := schema.Meta()

	fieldsParam := opts.FieldsParamName
	if fieldsParam == "" {
		fieldsParam = meta.FieldsParamName
	}
	if fieldsParam == "" {
		fieldsParam = DefaultFieldsParamName
	}
	embedParam := opts.EmbedParamName
	if embedParam == "" {
		embedParam = meta.EmbedParamName
	}
	if embedParam == "" {
		embedParam = DefaultEmbedParamName
	}

	return &Marshaller{
		schema:       schema,
		fieldsParam:  fieldsParam,
		embedParam:   embedParam,
		fieldsParser: NewSelectionParser(schema.AllFieldPaths()),
		embedParser:  NewSelectionParser(schema.NestedFieldPaths()),
	}
}

// Selections decodes and validates both selection sets from the request.
// Empty sets mean "use the schema's defaults".
func (m *Marshaller) Selections(r *http.Request) (StringSet, StringSet, error) {
	decoder := NewRequestDecoder(r)

	selectedFields, err := decoder.Selection(m.fieldsParam, m.fieldsParser)
	if err != nil {
		return nil, nil, err
	}

	selectedEmbed, err := decoder.Selection(m.embedParam, m.embedParser)
	if err != nil {
		return nil, nil, err
	}

	return selectedFields, selectedEmbed, nil
}

// MarshalRequest renders a payload according to the request's selections.
func (m *Marshaller) MarshalRequest(r *http.Request, payload any) (map[string]any, error) {
	selectedFields, selectedEmbed, err := m.Selections(r)
	if err != nil {
		return nil, err
	}
	return Marshal(m.schema, payload, selectedFields, selectedEmbed)
}

// Wrap decorates a handler with response marshalling.
//
// Selections are decoded and validated before the handler runs: an invalid
// selection string fails the request without incurring any of the
// handler's side effects, and no partial output is produced. The handler's
// result is marshalled through the plan; a Response (or *Response) result
// keeps its Code and Headers untouched with only Data replaced by the
// output mapping.
func (m *Marshaller) Wrap(handler HandlerFunc) HandlerFunc {
	return func(r *http.Request) (any, error) {
		selectedFields, selectedEmbed, err := m.Selections(r)
		if err != nil {
			return nil, err
		}

		result, err := handler(r)
		if err != nil {
			return nil, err
		}

		plan := BuildPlan(m.schema, selectedFields, selectedEmbed)

		switch resp := result.(type) {
		case *Response:
			data, err := ApplyPlan(plan, resp.Data)
			if err != nil {
				return nil, err
			}
			return &Response{Data: data, Code: resp.Code, Headers: resp.Headers}, nil
		case Response:
			data, err := ApplyPlan(plan, resp.Data)
			if err != nil {
				return nil, err
			}
			return Response{Data: data, Code: resp.Code, Headers: resp.Headers}, nil
		default:
			return ApplyPlan(plan, result)
		}
	}
}

// MarshalWith returns the ready-to-use decorating marshaller for a schema.
func MarshalWith(schema *Schema) func(HandlerFunc) HandlerFunc {
	return NewMarshaller(schema, MarshallerOpts{}).Wrap
}

// MarshalOf is MarshalWith for a tag-declared fieldset.
func MarshalOf(prototype any) (func(HandlerFunc) HandlerFunc, error) {
	schema, err := SchemaOf(prototype)
	if err != nil {
		return nil, err
	}
	return MarshalWith(schema), nil
}
