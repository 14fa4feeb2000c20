// Package paramset expands configuration records holding alternatives into
// sets of fully resolved parameter records.
package paramset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"feedin_simulator/internal/config"
)

var ErrLinkedLength = errors.New("linked fields have different numbers of alternatives")

// Params is a parameter record with every field resolved to a single value.
type Params map[string]config.Value

// Float returns the numeric value of field.
func (p Params) Float(field string) (float64, error) {
	v, ok := p[field]
	if !ok {
		return 0, fmt.Errorf("%w %q", config.ErrMissingField, field)
	}
	f, err := v.Float()
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", field, err)
	}
	return f, nil
}

// FloatOr returns the numeric value of field, or def when the field is absent.
func (p Params) FloatOr(field string, def float64) (float64, error) {
	if _, ok := p[field]; !ok {
		return def, nil
	}
	return p.Float(field)
}

// String returns the raw value of field.
func (p Params) String(field string) (string, error) {
	v, ok := p[field]
	if !ok {
		return "", fmt.Errorf("%w %q", config.ErrMissingField, field)
	}
	return v.Raw, nil
}

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Choice describes one combination of alternatives.
type Choice struct {
	// Index is the position of the combination in the product.
	Index int
	// Fields lists the varying fields in product order.
	Fields []string
	// Params is the resolved record.
	Params Params
}

// Values returns the chosen raw values of the varying fields.
func (c Choice) Values() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = c.Params[f].Raw
	}
	return out
}

// KeyFunc names a combination.
type KeyFunc func(c Choice) (string, error)

// Option configures Build.
type Option func(*options)

type options struct {
	linked   [][]string
	required []string
	key      KeyFunc
}

// Linked makes fields vary together instead of being crossed.
func Linked(fields ...string) Option {
	return func(o *options) {
		o.linked = append(o.linked, fields)
	}
}

// Require fails the build when one of fields is absent.
func Require(fields ...string) Option {
	return func(o *options) {
		o.required = append(o.required, fields...)
	}
}

// WithKey replaces the default key function.
func WithKey(fn KeyFunc) Option {
	return func(o *options) {
		o.key = fn
	}
}

// DefaultKey joins the varying values and the index with "_".
func DefaultKey(c Choice) (string, error) {
	parts := append(c.Values(), strconv.Itoa(c.Index))
	return SanitizeKey(strings.Join(parts, "_")), nil
}

// SanitizeKey replaces characters that are awkward in column names.
func SanitizeKey(s string) string {
	return strings.NewReplacer(" ", "_", "/", "_").Replace(s)
}

// dimension is one axis of the product: a group of fields that vary together.
type dimension struct {
	fields []string
	values [][]string // values[i] holds the i-th alternative for every field
}

// Build expands rec into the cartesian product of its multi-valued fields.
func Build(rec config.Record, opts ...Option) (*Set, error) {
	o := options{key: DefaultKey}
	for _, opt := range opts {
		opt(&o)
	}
	if err := rec.Require(o.required...); err != nil {
		return nil, err
	}

	dims, fixed, err := dimensions(rec, o.linked)
	if err != nil {
		return nil, err
	}

	base := make(Params, len(fixed))
	for f, raw := range fixed {
		base[f] = config.Coerce(raw)
	}

	var varying []string
	for _, d := range dims {
		varying = append(varying, d.fields...)
	}

	set := newSet()
	pos := make([]int, len(dims))
	for index := 0; ; index++ {
		params := base.clone()
		for i, d := range dims {
			for j, f := range d.fields {
				params[f] = config.Coerce(d.values[pos[i]][j])
			}
		}

		choice := Choice{Index: index, Fields: varying, Params: params}
		key, err := o.key(choice)
		if err != nil {
			return nil, fmt.Errorf("naming combination %d: %w", index, err)
		}
		for set.has(key) {
			key = key + "_" + strconv.Itoa(index)
		}
		set.add(key, params)

		if !advance(pos, dims) {
			break
		}
	}
	return set, nil
}

// advance moves pos to the next combination; the last dimension varies fastest.
func advance(pos []int, dims []dimension) bool {
	for i := len(dims) - 1; i >= 0; i-- {
		pos[i]++
		if pos[i] < len(dims[i].values) {
			return true
		}
		pos[i] = 0
	}
	return false
}

// dimensions splits rec into product axes and fixed values. Linked groups
// come first in option order, then every other multi-valued field by name.
func dimensions(rec config.Record, linked [][]string) ([]dimension, map[string]string, error) {
	fixed := make(map[string]string)
	inGroup := make(map[string]bool)
	var dims []dimension

	for _, group := range linked {
		d, err := linkedDimension(rec, group)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range group {
			inGroup[f] = true
			if d == nil {
				fixed[f] = config.SplitList(rec[f])[0]
			}
		}
		if d != nil {
			dims = append(dims, *d)
		}
	}

	for _, f := range rec.Fields() {
		if inGroup[f] {
			continue
		}
		alts := config.SplitList(rec[f])
		if len(alts) == 1 {
			fixed[f] = alts[0]
			continue
		}
		d := dimension{fields: []string{f}}
		for _, a := range alts {
			d.values = append(d.values, []string{a})
		}
		dims = append(dims, d)
	}
	return dims, fixed, nil
}

// linkedDimension zips the alternatives of group. Fields with a single value
// are repeated for every alternative. It returns nil when nothing varies.
func linkedDimension(rec config.Record, group []string) (*dimension, error) {
	n := 1
	alts := make([][]string, len(group))
	for i, f := range group {
		a, err := rec.Alternatives(f)
		if err != nil {
			return nil, err
		}
		alts[i] = a
		if len(a) == 1 {
			continue
		}
		if n != 1 && len(a) != n {
			return nil, fmt.Errorf("%w: %v", ErrLinkedLength, group)
		}
		n = len(a)
	}
	if n == 1 {
		return nil, nil
	}

	d := &dimension{fields: group, values: make([][]string, n)}
	for k := 0; k < n; k++ {
		row := make([]string, len(group))
		for i := range group {
			if len(alts[i]) == 1 {
				row[i] = alts[i][0]
			} else {
				row[i] = alts[i][k]
			}
		}
		d.values[k] = row
	}
	return d, nil
}

// FirstAlternative resolves rec by taking the first alternative of every field.
func FirstAlternative(rec config.Record) Params {
	p := make(Params, len(rec))
	for f, raw := range rec {
		p[f] = config.Coerce(config.SplitList(raw)[0])
	}
	return p
}
