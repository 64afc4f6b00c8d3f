// Package audit turns entity changes into impact log entries and the
// system-wide audit trail.
package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"
)

// ErrUnknownField is returned when a patch names a field the entity does
// not have.
var ErrUnknownField = errors.New("unknown field")

// Change is one field whose value differs between two states.
type Change struct {
	Field string
	Old   any
	New   any
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, Render(c.Old), Render(c.New))
}

// Diff compares current with the fields present in patch, keyed by JSON
// field name. Fields missing from patch are never reported. Changes come
// back in the declaration order of current's struct fields.
func Diff(current any, patch map[string]json.RawMessage) ([]Change, error) {
	before, err := toMap(current)
	if err != nil {
		return nil, err
	}
	if err := checkFields(before, patch); err != nil {
		return nil, err
	}

	var changes []Change
	for _, f := range fieldOrder(current) {
		raw, ok := patch[f]
		if !ok {
			continue
		}
		nv, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f, err)
		}
		if ov := before[f]; !same(ov, nv) {
			changes = append(changes, Change{Field: f, Old: ov, New: nv})
		}
	}
	return changes, nil
}

// Apply overlays patch onto current and decodes the result into dst, which
// may be current itself.
func Apply(current any, patch map[string]json.RawMessage, dst any) error {
	merged, err := toMap(current)
	if err != nil {
		return err
	}
	if err := checkFields(merged, patch); err != nil {
		return err
	}
	for k, raw := range patch {
		v, err := decode(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", k, err)
		}
		merged[k] = v
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Reason joins change descriptions into one impact log reason.
func Reason(changes []Change) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// Render formats a decoded JSON value for a change description. Null is
// rendered as None.
func Render(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := a.(json.Number); ok {
		if y, ok := b.(json.Number); ok {
			return sameNumber(x, y)
		}
	}
	return Render(a) == Render(b)
}

// sameNumber compares by value, so 50, 50.0 and 5e1 are equal.
func sameNumber(a, b json.Number) bool {
	x, okx := new(big.Rat).SetString(a.String())
	y, oky := new(big.Rat).SetString(b.String())
	if !okx || !oky {
		return a == b
	}
	return x.Cmp(y) == 0
}

func checkFields(known map[string]any, patch map[string]json.RawMessage) error {
	for k := range patch {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
	}
	return nil
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(raw json.RawMessage) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// fieldOrder lists the JSON names of a struct's fields in declaration order.
func fieldOrder(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}
