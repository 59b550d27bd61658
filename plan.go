package fieldset

import "strings"

///////////////////////////////////////////////////////////////////////////////
// RenderPlan
///////////////////////////////////////////////////////////////////////////////

// RenderPlan is the per-request rendering instruction set: output field name
// to the unit that renders it. A plan is built from one caller's validated
// selections and discarded with the request; it is never cached, since
// selections vary per caller. Entry order carries no meaning.
type RenderPlan map[string]PlanEntry

// PlanEntry is one rendering unit in a plan. Concrete kinds:
//   - ScalarPlanEntry: copy a scalar declaration's value through.
//   - KeyPlanEntry: render a nested field unembedded, as its plain key.
//   - NestedPlanEntry: recurse into a nested object with a child plan.
//   - ListPlanEntry: recurse into a collection of nested objects.
type PlanEntry interface {
	planEntry()
}

// ScalarPlanEntry passes a directly declared scalar field through verbatim.
type ScalarPlanEntry struct {
	Declaration FieldDeclaration
}

// KeyPlanEntry renders the unembedded representation of a nested field.
// Key is the plain-key adapter, nil when the declaration configures none
// (the field then renders null). Declaration performs the actual rendering,
// including the list-of-keys form for list-shaped fields.
type KeyPlanEntry struct {
	Key         *MemberField
	Declaration NestableDeclaration
}

// NestedPlanEntry embeds a nested object, rendered through a child plan.
type NestedPlanEntry struct {
	Plan    RenderPlan
	Options NestedOptions
}

// ListPlanEntry embeds a collection of nested objects, each element
// rendered through the same child plan.
type ListPlanEntry struct {
	Plan    RenderPlan
	Options NestedOptions
}

func (ScalarPlanEntry) planEntry() {}
func (KeyPlanEntry) planEntry()    {}
func (NestedPlanEntry) planEntry() {}
func (ListPlanEntry) planEntry()   {}

///////////////////////////////////////////////////////////////////////////////
// BuildPlan
///////////////////////////////////////////////////////////////////////////////

// BuildPlan compiles validated selections into a RenderPlan for the schema.
//
// Empty selection sets substitute the schema's defaults. Selected paths that
// name a direct field render directly; a nested direct field renders as a
// child plan when it is also selected for embedding, and as its plain key
// otherwise. Dotted paths are accumulated per first segment and forwarded
// as the child selections of that field's recursive BuildPlan call — a path
// like "owner.email" narrows the owner sub-plan even when "owner" itself is
// in the selection.
//
// Both selection sets must already be validated against the schema's path
// vocabularies; BuildPlan does not re-validate.
func BuildPlan(schema *Schema, selectedFields, selectedEmbed StringSet) RenderPlan {
	if len(selectedFields) == 0 {
		selectedFields = schema.DefaultFieldSet()
	}
	if len(selectedEmbed) == 0 {
		selectedEmbed = schema.DefaultEmbedSet()
	}

	declared := NewStringSet(schema.names...)
	directFields := selectedFields.Intersect(declared)

	// A dotted path selects its first segment too: "owner.email" alone
	// still renders the owner field, narrowed to email.
	filteredNested := childSelections(selectedFields.Diff(directFields))
	for name := range filteredNested {
		if declared.Has(name) {
			directFields.Add(name)
		}
	}

	directEmbed := selectedEmbed.Intersect(directFields)
	filteredEmbed := childSelections(selectedEmbed.Diff(directEmbed))

	plan := make(RenderPlan, len(directFields))
	for name := range directFields {
		decl := schema.fields[name]

		nestable, isNested := decl.(NestableDeclaration)
		if !isNested {
			plan[name] = ScalarPlanEntry{Declaration: decl}
			continue
		}

		if !directEmbed.Has(name) {
			plan[name] = KeyPlanEntry{Key: nestable.KeyField(), Declaration: nestable}
			continue
		}

		childPlan := BuildPlan(nestable.NestedSchema(), filteredNested[name], filteredEmbed[name])
		if decl.Shape() == ShapeNestedList {
			plan[name] = ListPlanEntry{Plan: childPlan, Options: nestable.NestedOptions()}
		} else {
			plan[name] = NestedPlanEntry{Plan: childPlan, Options: nestable.NestedOptions()}
		}
	}

	return plan
}

// childSelections groups dotted paths by their first segment, stripping the
// segment: {"owner.email", "owner.org.id"} becomes
// {"owner": {"email", "org.id"}}.
func childSelections(paths StringSet) map[string]StringSet {
	children := make(map[string]StringSet)
	for path := range paths {
		field, childPath, found := strings.Cut(path, PathSeparator)
		if !found {
			continue
		}
		if children[field] == nil {
			children[field] = NewStringSet()
		}
		children[field].Add(childPath)
	}
	return children
}
