//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
)

// DefaultIDField is the identifier field used by the upstream admin API.
const DefaultIDField = "_id"

// Entity is one record of a managed resource (product, staff member, order, category, customer).
// The upstream schema is not enforced; fields are read defensively with fallback defaults.
// Entities are values: With returns a modified copy and never mutates the receiver.
type Entity struct {
	ID     string
	Fields map[string]any
}

// NewEntity builds an Entity from a decoded JSON object.
// It reports false when the object carries no usable identifier.
func NewEntity(idField string, raw map[string]any) (Entity, bool) {
	if idField == "" {
		idField = DefaultIDField
	}
	id := scalarString(raw[idField])
	if strings.TrimSpace(id) == "" {
		return Entity{}, false
	}
	return Entity{ID: id, Fields: maps.Clone(raw)}, true
}

// Value returns the raw field value and whether it is present.
func (e Entity) Value(field string) (any, bool) {
	v, ok := e.Fields[field]
	return v, ok
}

// Bool reads a boolean flag. Missing or unrecognised values read as false.
// Strings "true"/"false" and non-zero numbers are accepted.
func (e Entity) Bool(field string) bool {
	switch v := e.Fields[field].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// String reads a field as display text. Missing values read as "".
func (e Entity) String(field string) string {
	return scalarString(e.Fields[field])
}

// Number reads a numeric field. The second result is false when the value is missing or not numeric.
func (e Entity) Number(field string) (float64, bool) {
	switch v := e.Fields[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// With returns a copy of the entity with field set to value.
func (e Entity) With(field string, value any) Entity {
	fields := maps.Clone(e.Fields)
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[field] = value
	return Entity{ID: e.ID, Fields: fields}
}

// MarshalJSON emits the upstream field map.
func (e Entity) MarshalJSON() ([]byte, error) {
	if e.Fields == nil {
		return json.Marshal(map[string]any{DefaultIDField: e.ID})
	}
	return json.Marshal(e.Fields)
}

// UnmarshalJSON reads an upstream object keyed by DefaultIDField.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = scalarString(raw[DefaultIDField])
	e.Fields = raw
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// IndexOf returns the position of the entity with the given id, or -1.
func IndexOf(items []Entity, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// ReplaceByID returns a copy of items with the entity matching e.ID replaced in place.
// The second result is false when no entity matched.
func ReplaceByID(items []Entity, e Entity) ([]Entity, bool) {
	idx := IndexOf(items, e.ID)
	if idx < 0 {
		return items, false
	}
	out := make([]Entity, len(items))
	copy(out, items)
	out[idx] = e
	return out, true
}

// RemoveByID returns a copy of items without the entity matching id, preserving order.
// The second result is false when no entity matched.
func RemoveByID(items []Entity, id string) ([]Entity, bool) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, false
	}
	out := make([]Entity, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out, true
}
