// Package filters keeps the per-section filter selections and turns them into predicates
// that are ANDed together.
package filters

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"hrpulse/apperrors"
)

// All is the sentinel meaning "no constraint" for enumerated fields.
const All = "all"

// Values maps field name to selected value.
type Values map[string]string

func (v Values) Clone() Values {
	return maps.Clone(v)
}

// Field describes one filter control.
type Field struct {
	Name    string
	Default string
	// Any is the value that removes this field's constraint.
	Any string
	// Allowed restricts the accepted values; Any is always accepted. Empty means free input.
	Allowed []string
	// FreeText fields are typed by the user and reload debounced.
	FreeText bool
}

// Enum is an enumerated field whose default and sentinel are All.
func Enum(name string, allowed ...string) Field {
	return Field{Name: name, Default: All, Any: All, Allowed: allowed}
}

// Search is a free-text field whose default and sentinel are the empty string.
func Search(name string) Field {
	return Field{Name: name, FreeText: true}
}

func (f Field) accepts(value string) bool {
	return value == f.Any || len(f.Allowed) == 0 || slices.Contains(f.Allowed, value)
}

// Set holds the current selections for a fixed list of fields. It is not safe for
// concurrent use.
type Set struct {
	fields []Field
	values Values
}

func NewSet(fields ...Field) *Set {
	s := &Set{fields: fields, values: make(Values, len(fields))}
	for _, f := range fields {
		s.values[f.Name] = f.Default
	}
	return s
}

func (s *Set) field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Apply validates every update first and then applies them all, so a rejected update leaves
// the set unchanged. It returns the fields whose value actually changed.
func (s *Set) Apply(updates Values) ([]Field, error) {
	for name, value := range updates {
		f, ok := s.field(name)
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown filter %q", name))
		}
		if !f.accepts(value) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid value %q for filter %q", value, name))
		}
	}

	var changed []Field
	for _, f := range s.fields {
		value, ok := updates[f.Name]
		if !ok || s.values[f.Name] == value {
			continue
		}
		s.values[f.Name] = value
		changed = append(changed, f)
	}
	return changed, nil
}

// Reset restores the defaults. It returns false, and changes nothing, when the set is
// already at its defaults.
func (s *Set) Reset() bool {
	if s.IsDefault() {
		return false
	}
	for _, f := range s.fields {
		s.values[f.Name] = f.Default
	}
	return true
}

func (s *Set) IsDefault() bool {
	for _, f := range s.fields {
		if s.values[f.Name] != f.Default {
			return false
		}
	}
	return true
}

// ActiveFields returns the names of the fields currently constraining results, in
// declaration order.
func (s *Set) ActiveFields() []string {
	var names []string
	for _, f := range s.fields {
		if Active(s.values, f) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Values returns a copy of the current selections.
func (s *Set) Values() Values {
	return s.values.Clone()
}

// Active reports whether the field in v constrains results.
func Active(v Values, f Field) bool {
	value, ok := v[f.Name]
	return ok && value != f.Any
}

// Predicate is one independent filter check.
type Predicate[T any] func(T) bool

// Apply returns the items matching every predicate, preserving order. Nil predicates are skipped.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchAll[T any](item T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// Equal matches items whose key equals value. It returns nil, meaning no constraint, when
// value is the sentinel.
func Equal[T any](value, sentinel string, key func(T) string) Predicate[T] {
	if value == sentinel {
		return nil
	}
	return func(item T) bool {
		return key(item) == value
	}
}

// Contains matches items where any of the text fields contains term, case-insensitively.
func Contains[T any](term string, text func(T) []string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(item T) bool {
		for _, s := range text(item) {
			if strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	}
}
