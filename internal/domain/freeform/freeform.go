// Package freeform holds helpers for caller-supplied JSON objects that are stored
// verbatim next to a few typed fields.
package freeform

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotObject = errors.New("value must be a JSON object")

// DecodeObject decodes raw into a map. Arrays, scalars and null are rejected.
func DecodeObject(raw []byte) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotObject
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotObject
	}
	return m, nil
}

// PopString removes key from m and returns it as a string. Numbers are formatted;
// other types are reported as absent.
func PopString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	delete(m, key)

	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// PopNumber removes key from m and returns it as a float64. Numeric strings are
// accepted because older clients sent quantities as path-segment strings.
func PopNumber(m map[string]any, key string) (float64, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	delete(m, key)

	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return t, true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", key, err)
		}
		return f, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
}

// TakeNumber removes key from m only when it holds a number; anything else stays in
// m untouched.
func TakeNumber(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	f, ok, err := PopNumber(map[string]any{key: v}, key)
	if err != nil || !ok {
		return 0, false
	}
	delete(m, key)
	return f, true
}

// Clone deep-copies maps and slices produced by encoding/json or the bson decoder.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
