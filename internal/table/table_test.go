package table

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedin_simulator/internal/model"
)

func hours(n int) []time.Time {
	start := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := make([]time.Time, n)
	for i := range idx {
		idx[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return idx
}

func TestAddColumn(t *testing.T) {
	idx := hours(3)
	tbl := New(idx)

	require.NoError(t, tbl.AddColumn("b", model.Series{Index: idx, Values: []float64{1, 2, 3}}))
	require.NoError(t, tbl.AddColumn("a", model.Series{Index: idx, Values: []float64{0, 0, 6}}))

	assert.Equal(t, []string{"b", "a"}, tbl.Keys(), "insertion order")
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 2, tbl.Width())

	col, ok := tbl.Column("b")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, col.Values)
	assert.True(t, model.SameIndex(idx, col.Index))

	col.Values[0] = 99
	again, _ := tbl.Column("b")
	assert.Equal(t, 1.0, again.Values[0], "Column returns a copy")

	_, ok = tbl.Column("c")
	assert.False(t, ok)
}

func TestAddColumn_Errors(t *testing.T) {
	idx := hours(3)
	tbl := New(idx)
	require.NoError(t, tbl.AddColumn("a", model.Series{Index: idx, Values: []float64{1, 2, 3}}))

	err := tbl.AddColumn("a", model.Series{Index: idx, Values: []float64{1, 2, 3}})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))

	err = tbl.AddColumn("short", model.Series{Index: idx[:2], Values: []float64{1, 2}})
	assert.True(t, errors.Is(err, ErrIndexMismatch))

	err = tbl.AddColumn("shifted", model.Series{Index: hours(4)[1:], Values: []float64{1, 2, 3}})
	assert.True(t, errors.Is(err, ErrIndexMismatch))

	err = tbl.AddColumn("ragged", model.Series{Index: idx, Values: []float64{1}})
	assert.True(t, errors.Is(err, ErrIndexMismatch))

	assert.Equal(t, []string{"a"}, tbl.Keys())
}

func TestAggregates(t *testing.T) {
	idx := hours(4)
	tbl := New(idx)
	require.NoError(t, tbl.AddColumn("x", model.Series{Index: idx, Values: []float64{0, 0.5, 1, 0.5}}))
	require.NoError(t, tbl.AddColumn("y", model.Series{Index: idx, Values: []float64{2, 2, 2, 2}}))

	assert.Equal(t, map[string]float64{"x": 2, "y": 8}, tbl.Sum())
	assert.Equal(t, map[string]float64{"x": 0.5, "y": 2}, tbl.Mean())

	s := tbl.Summary("set 1")
	assert.Equal(t, "set 1", s.Name)
	assert.Equal(t, 4, s.Rows)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, ColumnSummary{Key: "x", Sum: 2, Mean: 0.5, Max: 1}, s.Columns[0])
	assert.Equal(t, ColumnSummary{Key: "y", Sum: 8, Mean: 2, Max: 2}, s.Columns[1])
	assert.Equal(t, 10.0, s.Total())
}

func TestAggregates_Empty(t *testing.T) {
	tbl := New(nil)
	require.NoError(t, tbl.AddColumn("x", model.Series{}))

	assert.Equal(t, 0.0, tbl.Sum()["x"])
	assert.True(t, math.IsNaN(tbl.Mean()["x"]))
	assert.Equal(t, 0.0, tbl.Summary("").Columns[0].Max)
}

func TestWriteCSV(t *testing.T) {
	idx := hours(2)
	tbl := New(idx)
	require.NoError(t, tbl.AddColumn("ENERCON_82_hub98_2300", model.Series{Index: idx, Values: []float64{0.25, 1}}))
	require.NoError(t, tbl.AddColumn("ENERCON_82_hub78_3000", model.Series{Index: idx, Values: []float64{0, 0.125}}))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	want := "timeindex,ENERCON_82_hub98_2300,ENERCON_82_hub78_3000\n" +
		"2014-01-01T00:00:00Z,0.25,0\n" +
		"2014-01-01T01:00:00Z,1,0.125\n"
	assert.Equal(t, want, buf.String())
}
