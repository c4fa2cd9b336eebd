// Package wire models the loosely versioned JSON the decision-memo backend
// emits. Several backend generations coexist in production and any subset of
// fields may be present, absent, or null, so every read goes through typed
// accessors with explicit defaults. Downstream packages never touch raw maps.
package wire

import (
	"encoding/json"
	"strings"
)

// Document is one JSON object from the backend, or a sub-object of one.
type Document map[string]any

// Decode parses a JSON body into a Document. Non-object bodies (arrays,
// scalars, invalid JSON) return an error; callers treat that as an empty
// payload rather than a failure.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ObjectOf converts a value to a Document when it is a JSON object.
func ObjectOf(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, t != nil
	case map[string]any:
		return Document(t), t != nil
	}
	return nil, false
}

// Lookup walks a dotted path ("artifact.memo_data") and reports whether the
// full path exists. An empty path yields the document itself.
func (d Document) Lookup(path string) (any, bool) {
	if d == nil {
		return nil, false
	}
	if path == "" {
		return d, true
	}
	var cur any = d
	for _, part := range strings.Split(path, ".") {
		obj, ok := ObjectOf(cur)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Has reports whether the path exists, even if its value is null.
func (d Document) Has(path string) bool {
	_, ok := d.Lookup(path)
	return ok
}

// Child returns the sub-document at path, or nil when absent or not an
// object.
func (d Document) Child(path string) Document {
	v, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	obj, _ := ObjectOf(v)
	return obj
}

// Ensure returns the sub-document at key, creating it when missing or not an
// object. The created map is stored back so later marshalling sees it.
func (d Document) Ensure(key string) Document {
	if obj, ok := ObjectOf(d[key]); ok {
		return obj
	}
	child := map[string]any{}
	d[key] = child
	return child
}

// String returns the string at path, or "" when absent or not a string.
func (d Document) String(path string) string {
	v, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Number returns the numeric value at path. JSON decoding yields float64,
// but documents built in code may carry Go ints.
func (d Document) Number(path string) (float64, bool) {
	v, ok := d.Lookup(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// NumberOr returns the number at path, or def when absent, null, or
// non-numeric.
func (d Document) NumberOr(path string, def float64) float64 {
	if n, ok := d.Number(path); ok {
		return n
	}
	return def
}

// Bool returns the boolean at path and whether one was present.
func (d Document) Bool(path string) (bool, bool) {
	v, ok := d.Lookup(path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Array returns the array at path, or nil when absent or not an array.
func (d Document) Array(path string) []any {
	v, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	arr, _ := v.([]any)
	return arr
}

// Truthy applies JavaScript truthiness, which the backend contract is
// written against: nil, false, 0, and "" are falsy; empty objects and
// arrays are truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

// Candidate names one location a logical field may live at: a parent path
// and a key within it. Priority chains are expressed as ordered Candidate
// slices so the order stays data, not code.
type Candidate struct {
	Path string
	Key  string
}

// FirstTruthy evaluates candidates in order and returns the first truthy
// value found.
func (d Document) FirstTruthy(candidates []Candidate) (any, bool) {
	for _, c := range candidates {
		base := d
		if c.Path != "" {
			if base = d.Child(c.Path); base == nil {
				continue
			}
		}
		if v, ok := base[c.Key]; ok && Truthy(v) {
			return v, true
		}
	}
	return nil, false
}
