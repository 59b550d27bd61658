package fieldset

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

var (
	ErrNotACollection = errors.New("attribute value is not a slice or array")
)

// attrValue reads a named attribute from a source object. The access is
// duck-typed: whatever the source happens to be, a best-effort lookup is
// made and absence reports ok=false instead of failing.
//
// Currently supports:
//   - map types with string keys
//   - structs and pointers to structs, matching the `marshal` tag name
//     first, then the exported field name case-insensitively
//   - zero-argument single-result methods, matched case-insensitively
//     (getter support for computed attributes)
func attrValue(source any, name string) (any, bool) {
	if source == nil || name == "" {
		return nil, false
	}

	original := reflect.ValueOf(source)

	value := original
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		entry := value.MapIndex(reflect.ValueOf(name))
		if !entry.IsValid() {
			return nil, false
		}
		return entry.Interface(), true

	case reflect.Struct:
		if fieldValue, ok := structFieldValue(value, name); ok {
			return fieldValue, true
		}
	}

	if methodValue, ok := getterValue(original, name); ok {
		return methodValue, true
	}

	return nil, false
}

// structFieldValue matches a struct field by its `marshal` tag output name,
// falling back to a case-insensitive match on the exported field name.
func structFieldValue(value reflect.Value, name string) (any, bool) {
	structType := value.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}

		if tag, ok := field.Tag.Lookup(MarshalTagPrefix); ok {
			if tagName, named := marshalTagName(tag); named && tagName == name {
				return value.Field(i).Interface(), true
			}
		}
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if strings.EqualFold(field.Name, name) {
			return value.Field(i).Interface(), true
		}
	}

	return nil, false
}

// getterValue matches a zero-argument single-result method on the value (or
// on its pointer receiver set) case-insensitively and calls it.
func getterValue(value reflect.Value, name string) (any, bool) {
	if !value.IsValid() {
		return nil, false
	}

	candidates := []reflect.Value{value}
	if value.Kind() != reflect.Pointer && value.CanAddr() {
		candidates = append(candidates, value.Addr())
	}

	for _, candidate := range candidates {
		candidateType := candidate.Type()
		for i := 0; i < candidateType.NumMethod(); i++ {
			method := candidateType.Method(i)
			if !strings.EqualFold(method.Name, name) {
				continue
			}
			if method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
				continue
			}
			results := candidate.Method(i).Call(nil)
			return results[0].Interface(), true
		}
	}

	return nil, false
}

// isNilValue reports whether a duck-typed attribute value is nil, including
// a typed nil (nil slice, map or pointer boxed in an interface).
func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// collectionElements flattens a slice or array attribute into []any for
// list rendering.
func collectionElements(collection any) ([]any, error) {
	value := reflect.ValueOf(collection)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		elements := make([]any, value.Len())
		for i := 0; i < value.Len(); i++ {
			elements[i] = value.Index(i).Interface()
		}
		return elements, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotACollection, collection)
	}
}
