package model

import (
	"fmt"
	"sort"
	"time"
)

// Variable is a coastdat weather variable name.
type Variable string

const (
	VarWindSpeed   Variable = "v_wind"
	VarTempAir     Variable = "temp_air"
	VarPressure    Variable = "pressure"
	VarRoughness   Variable = "Z0"
	VarDiffuse     Variable = "dhi"
	VarDirectHoriz Variable = "dirhi"
)

// VariableInfo holds display name and unit for a weather variable.
type VariableInfo struct {
	Name string
	Unit string
}

// VariableCatalog maps every known coastdat variable to its display name and unit.
var VariableCatalog = map[Variable]VariableInfo{
	VarWindSpeed:   {Name: "Wind Speed", Unit: "m/s"},
	VarTempAir:     {Name: "Air Temperature", Unit: "K"},
	VarPressure:    {Name: "Air Pressure", Unit: "Pa"},
	VarRoughness:   {Name: "Roughness Length", Unit: "m"},
	VarDiffuse:     {Name: "Diffuse Horizontal Irradiance", Unit: "W/m²"},
	VarDirectHoriz: {Name: "Direct Horizontal Irradiance", Unit: "W/m²"},
}

// Weather holds the time series of one coastdat location.
// Every column has the same length as Index.
type Weather struct {
	LocationID string
	Index      []time.Time
	columns    map[Variable][]float64
}

func NewWeather(locationID string, index []time.Time) *Weather {
	return &Weather{
		LocationID: locationID,
		Index:      index,
		columns:    make(map[Variable][]float64),
	}
}

// Set stores a column. The length must match the index.
func (w *Weather) Set(v Variable, values []float64) error {
	if len(values) != len(w.Index) {
		return fmt.Errorf("column %s: %d values for %d timestamps", v, len(values), len(w.Index))
	}
	w.columns[v] = values
	return nil
}

// Column returns the values of v.
func (w *Weather) Column(v Variable) ([]float64, bool) {
	c, ok := w.columns[v]
	return c, ok
}

// MustColumn returns the values of v or an error naming the location.
func (w *Weather) MustColumn(v Variable) ([]float64, error) {
	c, ok := w.columns[v]
	if !ok {
		return nil, fmt.Errorf("location %s: missing column %s", w.LocationID, v)
	}
	return c, nil
}

// Variables returns the stored variables in sorted order.
func (w *Weather) Variables() []Variable {
	vars := make([]Variable, 0, len(w.columns))
	for v := range w.columns {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}

func (w *Weather) Len() int {
	return len(w.Index)
}

// TimeRange returns the first and last timestamp.
func (w *Weather) TimeRange() (TimeRange, bool) {
	if len(w.Index) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{Start: w.Index[0], End: w.Index[len(w.Index)-1]}, true
}

// Series is a time-indexed numeric series, typically a feed-in.
type Series struct {
	Index  []time.Time
	Values []float64
}

func (s Series) Len() int {
	return len(s.Values)
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SameIndex reports whether a and b hold the same timestamps.
func SameIndex(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
