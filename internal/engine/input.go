package engine

import "fmt"

// Input is the open-ended field mapping an agent analyzes. Fields are
// optional; accessors substitute the documented per-field default when a
// field is absent.
type Input map[string]any

// TypeError reports a field that is present but not of the expected kind.
// Malformed values fail loudly instead of being coerced.
type TypeError struct {
	Field string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("field %q: expected number, got %T", e.Field, e.Value)
}

// Number returns the numeric value for key, or def when the field is absent
// or nil. A present non-numeric value yields a *TypeError.
func (in Input) Number(key string, def float64) (float64, error) {
	raw, ok := in[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, &TypeError{Field: key, Value: raw}
	}
}

// String returns the string value for key, or def when absent or not a string.
func (in Input) String(key, def string) string {
	if v, ok := in[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Bool returns the boolean value for key, or def when absent or not a bool.
func (in Input) Bool(key string, def bool) bool {
	if v, ok := in[key].(bool); ok {
		return v
	}
	return def
}

// Has reports whether key is present, regardless of value.
func (in Input) Has(key string) bool {
	_, ok := in[key]
	return ok
}

// Section returns the nested mapping under key, or an empty Input.
func (in Input) Section(key string) Input {
	switch v := in[key].(type) {
	case Input:
		return v
	case map[string]any:
		return Input(v)
	default:
		return Input{}
	}
}

// List returns the nested mappings under key. Non-mapping elements are skipped.
func (in Input) List(key string) []Input {
	raw, ok := in[key].([]any)
	if !ok {
		// Already-typed slices show up when inputs are built in code.
		if typed, ok := in[key].([]Input); ok {
			return typed
		}
		if maps, ok := in[key].([]map[string]any); ok {
			out := make([]Input, 0, len(maps))
			for _, m := range maps {
				out = append(out, Input(m))
			}
			return out
		}
		return nil
	}
	out := make([]Input, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, Input(v))
		case Input:
			out = append(out, v)
		}
	}
	return out
}

// Strings returns the string slice under key, dropping non-string elements.
func (in Input) Strings(key string) []string {
	if typed, ok := in[key].([]string); ok {
		return typed
	}
	raw, ok := in[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
