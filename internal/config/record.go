package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ListSeparator separates the alternatives of a multi-valued field.
const ListSeparator = ","

var (
	ErrMissingField = errors.New("missing field")
	ErrNotNumeric   = errors.New("value is not numeric")
)

// Record maps a field name to its raw value. A value containing
// ListSeparator holds alternatives.
type Record map[string]string

// UnmarshalYAML accepts scalars and sequences of scalars. Sequences are
// joined with ListSeparator so both spellings describe the same alternatives.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %s", value.Line, kindName(value.Kind))
	}
	out := make(Record, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			out[key.Value] = strings.TrimSpace(val.Value)
		case yaml.SequenceNode:
			parts := make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: field %q: nested values are not supported", item.Line, key.Value)
				}
				parts = append(parts, strings.TrimSpace(item.Value))
			}
			out[key.Value] = strings.Join(parts, ListSeparator)
		default:
			return fmt.Errorf("line %d: field %q: unsupported %s", val.Line, key.Value, kindName(val.Kind))
		}
	}
	*r = out
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// Fields returns the field names in sorted order.
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Get returns the raw value of field.
func (r Record) Get(field string) (string, error) {
	v, ok := r[field]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingField, field)
	}
	return v, nil
}

// Alternatives splits the value of field into its alternatives.
// Empty elements are dropped; a field without separator yields one element.
func (r Record) Alternatives(field string) ([]string, error) {
	raw, err := r.Get(field)
	if err != nil {
		return nil, err
	}
	return SplitList(raw), nil
}

// Require checks that every field is present.
func (r Record) Require(fields ...string) error {
	for _, f := range fields {
		if _, ok := r[f]; !ok {
			return fmt.Errorf("%w %q", ErrMissingField, f)
		}
	}
	return nil
}

// Clone returns a copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SplitList splits raw on ListSeparator and trims every element.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(raw)}
	}
	return out
}

// Value is a single resolved configuration value.
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
}

// Coerce converts raw to a number when possible. When parsing fails the
// string is kept as is and Numeric is false; this is not an error.
func Coerce(raw string) Value {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{Raw: raw}
	}
	return Value{Raw: raw, Num: f, Numeric: true}
}

func (v Value) String() string {
	return v.Raw
}

// Float returns the numeric value or ErrNotNumeric.
func (v Value) Float() (float64, error) {
	if !v.Numeric {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.Raw)
	}
	return v.Num, nil
}
