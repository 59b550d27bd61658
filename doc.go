// Package fieldset provides a declarative field-selection and
// response-serialization layer for API resources.
//
// A fieldset is a named set of output fields for a data object. The service
// author declares the fieldset once (either with a SchemaBuilder or with
// `marshal` struct tags on a view struct), and the API caller selects, per
// request, which fields should appear in the response and whether nested
// objects should be embedded or reduced to a plain reference key.
//
// Selection happens through two query parameters (names are configurable
// through Meta, defaults are "fields" and "embedd"):
//   - fields: comma separated list of field paths to include. Nested paths
//     use a dot separator, e.g. "owner.email".
//   - embedd: comma separated list of nested fields that should be embedded
//     as full objects. A nested field that is selected but not embedded is
//     rendered as its plain key value instead (usually the id).
//
// Omitting a parameter (or sending an empty value) selects the defaults
// configured in the schema's Meta; if no defaults are configured, all direct
// fields and all nested fields are selected.
//
// The package is built from a few small pieces:
//   - Field and MemberField: scalar declarations. MemberField extracts a
//     single member from an attribute's value and optionally chains a
//     Formatter over it.
//   - NestedField (and ListOf for collections): a declaration that renders
//     either as a full nested fieldset or as its plain key, depending on the
//     caller's embed selection.
//   - Schema: the immutable per-fieldset registry of declarations. It knows
//     every addressable dotted path, recursively, and the default selections.
//   - SelectionParser: validates a raw comma separated selection string
//     against a schema's path vocabulary.
//   - BuildPlan/ApplyPlan: compiles validated selections into a RenderPlan
//     and applies the plan to a source object, producing a map[string]any.
//     Wire encoding of that map (JSON, XML, ...) is out of scope.
//   - Marshaller: wraps an HTTP handler, decodes the two selection
//     parameters from the request (query string first, JSON body fallback),
//     and marshals the handler's result through the plan.
//
// Schemas are built once and are safe to share across concurrent requests.
// A RenderPlan is built and discarded per request, since selections vary
// per caller.
package fieldset
