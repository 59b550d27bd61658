package fieldset

///////////////////////////////////////////////////////////////////////////////
// Plan Application
///////////////////////////////////////////////////////////////////////////////

// ApplyPlan applies a render plan to a source object and produces the
// abstract output mapping. Wire encoding of the mapping is the caller's
// concern.
//
// Absent attributes are never errors: scalar entries fall back to their
// declaration's default, nested entries render null (allowNull) or an
// object of defaults, list entries render null (allowNull) or an empty
// list. Errors surface only from Formatter conversions.
func ApplyPlan(plan RenderPlan, source any) (map[string]any, error) {
	output := make(map[string]any, len(plan))

	for name, entry := range plan {
		var (
			value any
			err   error
		)

		switch e := entry.(type) {
		case ScalarPlanEntry:
			value, err = e.Declaration.Output(name, source)
		case KeyPlanEntry:
			value, err = e.Declaration.Output(name, source)
		case NestedPlanEntry:
			value, err = applyNested(e, name, source)
		case ListPlanEntry:
			value, err = applyList(e, name, source)
		}

		if err != nil {
			return nil, err
		}
		output[name] = value
	}

	return output, nil
}

// Marshal is the one-call form: build the plan for the selections and apply
// it to source.
func Marshal(schema *Schema, source any, selectedFields, selectedEmbed StringSet) (map[string]any, error) {
	return ApplyPlan(BuildPlan(schema, selectedFields, selectedEmbed), source)
}

func applyNested(entry NestedPlanEntry, name string, source any) (any, error) {
	opts := entry.Options

	value, ok := attrValue(source, sourceAttribute(opts.Attribute, name))
	if !ok || isNilValue(value) {
		if opts.AllowNull {
			return nil, nil
		}
		// Render the declared default through the child plan; a nil default
		// yields an object of the nested declarations' defaults.
		value = opts.Default
	}

	return ApplyPlan(entry.Plan, value)
}

func applyList(entry ListPlanEntry, name string, source any) (any, error) {
	opts := entry.Options

	value, ok := attrValue(source, sourceAttribute(opts.Attribute, name))
	if !ok || isNilValue(value) {
		if opts.AllowNull {
			return nil, nil
		}
		if opts.Default != nil {
			value = opts.Default
		} else {
			return []any{}, nil
		}
	}

	elements, err := collectionElements(value)
	if err != nil {
		return nil, err
	}

	rendered := make([]any, 0, len(elements))
	for _, element := range elements {
		object, err := ApplyPlan(entry.Plan, element)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, object)
	}

	return rendered, nil
}
