package fieldset

import (
	"errors"
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	ErrSelectionNotString = errors.New("selection value must be a string")
)

// UnknownFieldsError is the client-facing validation failure for selection
// strings that address paths outside the schema's vocabulary. Unknown is
// sorted so the message is deterministic.
type UnknownFieldsError struct {
	Unknown []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("Unknown fields: %s", strings.Join(e.Unknown, ", "))
}

///////////////////////////////////////////////////////////////////////////////
// SelectionParser
///////////////////////////////////////////////////////////////////////////////

// SelectionParser validates a raw comma separated selection string against
// a fixed vocabulary of valid field paths. One parser instance is bound per
// selection parameter: the fields parameter gets the schema's AllFieldPaths
// vocabulary, the embed parameter gets NestedFieldPaths.
type SelectionParser struct {
	Valid StringSet
}

// NewSelectionParser binds a parser to the given path vocabulary.
func NewSelectionParser(validPaths []string) *SelectionParser {
	return &SelectionParser{Valid: NewStringSet(validPaths...)}
}

// Parse validates a raw selection value.
//
// A non-string value is a caller contract violation and fails with
// ErrSelectionNotString. An empty string yields an empty set, which means
// "use the schema's defaults" downstream. Otherwise the value splits on
// commas into a set (duplicates collapse, order is irrelevant); every token
// must be in the vocabulary or Parse fails with an UnknownFieldsError
// listing the offenders in sorted order.
func (p *SelectionParser) Parse(value any) (StringSet, error) {
	raw, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrSelectionNotString, value)
	}

	if len(raw) == 0 {
		return NewStringSet(), nil
	}

	selected := NewStringSet(strings.Split(raw, SelectionSeparator)...)

	unknown := selected.Diff(p.Valid)
	if len(unknown) > 0 {
		return nil, &UnknownFieldsError{Unknown: unknown.Sorted()}
	}

	return selected, nil
}
