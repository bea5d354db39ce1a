package uri

import "github.com/celeryq/gocelery/internal/util"

// AsScalar returns the last element of v if v is a []string, or v itself
// otherwise.
func AsScalar(v interface{}) interface{} {
	if seq, ok := v.([]string); ok {
		if len(seq) == 0 {
			return nil
		}
		return seq[len(seq)-1]
	}
	return v
}

// AsArray wraps a scalar value in a single-element slice, or returns v
// unchanged if it is already a []string.
func AsArray(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		return []string{val}
	case nil:
		return nil
	default:
		return nil
	}
}

// Descriptor declares how one query key maps onto a field of T.
//
// Parse looks the key up under Source (camelCase-normalized) and hands the
// parsed value to Assign; Target has no effect on either step. Parser
// defaults to the identity function (returning the raw string/[]string
// value) when nil.
type Descriptor[T any] struct {
	Source string
	Target string
	Parser func(raw interface{}) (interface{}, error)
	Assign func(t *T, parsed interface{})
}

// Parse merges the fields described by descriptors into initial for every
// key whose queries[source] is defined, leaving undefined sources absent.
func Parse[T any](descriptors []Descriptor[T], queries Query, initial T) (T, error) {
	for _, d := range descriptors {
		key := d.Target
		if key == "" {
			key = util.ToCamelCase(d.Source)
		}
		raw, ok := queries[util.ToCamelCase(d.Source)]
		if !ok {
			continue
		}
		parse := d.Parser
		if parse == nil {
			parse = func(raw interface{}) (interface{}, error) { return raw, nil }
		}
		parsed, err := parse(raw)
		if err != nil {
			return initial, err
		}
		if d.Assign != nil {
			d.Assign(&initial, parsed)
		}
	}
	return initial, nil
}

// IntegerParser adapts util.ParseInteger to the Descriptor.Parser shape,
// operating on the scalar (last-wins) interpretation of the raw value.
func IntegerParser(raw interface{}) (interface{}, error) {
	s, _ := AsScalar(raw).(string)
	return util.ParseInteger(s)
}

// BooleanParser adapts util.ParseBoolean to the Descriptor.Parser shape.
func BooleanParser(raw interface{}) (interface{}, error) {
	s, _ := AsScalar(raw).(string)
	return util.ParseBoolean(s)
}

// StringParser returns the scalar interpretation of the raw value
// unchanged.
func StringParser(raw interface{}) (interface{}, error) {
	return AsScalar(raw), nil
}
