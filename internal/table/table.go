// Package table holds feed-in results: one column per parameter-set key,
// all sharing the weather time index.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"feedin_simulator/internal/model"
)

var (
	ErrIndexMismatch   = errors.New("index mismatch")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is a set of named series on a common index.
type Table struct {
	index   []time.Time
	keys    []string
	columns map[string][]float64
}

func New(index []time.Time) *Table {
	return &Table{
		index:   index,
		columns: make(map[string][]float64),
	}
}

// AddColumn appends s under key. The series index must equal the table index.
func (t *Table) AddColumn(key string, s model.Series) error {
	if _, ok := t.columns[key]; ok {
		return fmt.Errorf("column %q: %w", key, ErrDuplicateColumn)
	}
	if len(s.Values) != len(s.Index) || !model.SameIndex(t.index, s.Index) {
		return fmt.Errorf("column %q: %w", key, ErrIndexMismatch)
	}
	t.keys = append(t.keys, key)
	t.columns[key] = s.Values
	return nil
}

// Keys returns the column keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table) Index() []time.Time {
	return t.index
}

// Column returns a copy of the column stored under key.
func (t *Table) Column(key string) (model.Series, bool) {
	c, ok := t.columns[key]
	if !ok {
		return model.Series{}, false
	}
	values := make([]float64, len(c))
	copy(values, c)
	return model.Series{Index: t.index, Values: values}, true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.index)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.keys)
}

// Sum returns the sum of every column.
func (t *Table) Sum() map[string]float64 {
	out := make(map[string]float64, len(t.keys))
	for _, k := range t.keys {
		out[k] = floats.Sum(t.columns[k])
	}
	return out
}

// Mean returns the arithmetic mean of every column. Empty columns give NaN.
func (t *Table) Mean() map[string]float64 {
	out := make(map[string]float64, len(t.keys))
	for _, k := range t.keys {
		out[k] = stat.Mean(t.columns[k], nil)
	}
	return out
}

// ColumnSummary aggregates one column.
type ColumnSummary struct {
	Key  string  `json:"key"`
	Sum  float64 `json:"sum"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Summary aggregates a whole table.
type Summary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Summary returns per-column aggregates in key order.
func (t *Table) Summary(name string) Summary {
	s := Summary{Name: name, Rows: t.Len(), Columns: make([]ColumnSummary, 0, len(t.keys))}
	for _, k := range t.keys {
		c := t.columns[k]
		cs := ColumnSummary{Key: k, Sum: floats.Sum(c), Mean: stat.Mean(c, nil)}
		if len(c) > 0 {
			cs.Max = floats.Max(c)
		}
		s.Columns = append(s.Columns, cs)
	}
	return s
}

// Total returns the sum over all columns.
func (s Summary) Total() float64 {
	var total float64
	for _, c := range s.Columns {
		total += c.Sum
	}
	return total
}

// WriteCSV writes the table with a timeindex column followed by one column
// per key.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"timeindex"}, t.keys...)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	row := make([]string, len(t.keys)+1)
	for i, ts := range t.index {
		row[0] = ts.Format(time.RFC3339)
		for j, k := range t.keys {
			row[j+1] = strconv.FormatFloat(t.columns[k][i], 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV line %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
