package types

import (
	"encoding/json"
	"strings"
)

// NotAvailable is the explicit sentinel for a field the research could not determine.
// It is distinct from an absent field.
const NotAvailable = "N/A"

// CalculatedKey is the sub-mapping owned by the derived metrics calculator
const CalculatedKey = "calculated"

// Record is a loosely-typed company record keyed by field name
type Record map[string]Value

// NewRecord returns an empty record
func NewRecord() Record {
	return Record{}
}

// RecordFromMap converts decoded JSON into a Record
func RecordFromMap(m map[string]any) Record {
	rec := make(Record, len(m))
	for k, v := range m {
		rec[k] = FromAny(v)
	}
	return rec
}

// Lookup resolves a dot-separated path. It reports false when any intermediate
// segment is not a mapping or the final key is missing.
func (r Record) Lookup(path string) (Value, bool) {
	if r == nil || path == "" {
		return Value{}, false
	}
	segments := strings.Split(path, ".")
	current, ok := r[segments[0]]
	if !ok {
		return Value{}, false
	}
	for _, seg := range segments[1:] {
		m, isMap := current.AsMap()
		if !isMap {
			return Value{}, false
		}
		current, ok = m[seg]
		if !ok {
			return Value{}, false
		}
	}
	return current, true
}

// Has reports whether the path resolves
func (r Record) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Set writes a value at a dot-separated path, creating intermediate mappings.
// Non-map intermediates are replaced.
func (r Record) Set(path string, v Value) {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		r[path] = v
		return
	}
	head := segments[0]
	child, ok := r[head].AsMap()
	if !ok {
		child = map[string]Value{}
	} else {
		child = cloneMap(child)
	}
	Record(child).Set(strings.Join(segments[1:], "."), v)
	r[head] = Map(child)
}

// StringAt returns the string at path, or "" when absent or not a string
func (r Record) StringAt(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// NumberAt returns the number at path
func (r Record) NumberAt(path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Calculated returns the derived metrics sub-mapping, or nil when absent
func (r Record) Calculated() map[string]Value {
	m, _ := r[CalculatedKey].AsMap()
	return m
}

// CalculatedNumber returns a derived metric
func (r Record) CalculatedNumber(key string) (float64, bool) {
	v, ok := r.Calculated()[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Clone returns a deep copy
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}

// Merge copies top-level fields from other into r, last write wins.
// The calculated sub-mapping is never copied.
func (r Record) Merge(other Record) {
	for k, v := range other {
		if k == CalculatedKey {
			continue
		}
		r[k] = v.Clone()
	}
}

// MarshalJSON writes the record with sorted keys
func (r Record) MarshalJSON() ([]byte, error) {
	return Map(map[string]Value(r)).MarshalJSON()
}

// UnmarshalJSON reads a JSON object into the record
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RecordFromMap(raw)
	return nil
}

func cloneMap(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
