package feedin

import (
	"fmt"

	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/solar"
	"feedin_simulator/internal/table"
	"feedin_simulator/internal/windpower"
)

// Kind distinguishes wind from PV results.
type Kind string

const (
	KindWind Kind = "wind"
	KindPV   Kind = "pv"
)

// Result is the evaluated table of one named parameter set.
type Result struct {
	Kind  Kind
	Set   string
	Table *table.Table
}

func (r Result) Summary() table.Summary {
	return r.Table.Summary(r.Set)
}

// CompareWind evaluates every set of c in creation order.
func (e *Evaluator) CompareWind(w *windpower.Weather, c *paramset.Collection) ([]Result, error) {
	var out []Result
	for _, name := range c.Names() {
		set, _ := c.Set(name)
		tbl, err := e.WindSets(w, set)
		if err != nil {
			return nil, fmt.Errorf("wind set %s: %w", name, err)
		}
		out = append(out, Result{Kind: KindWind, Set: name, Table: tbl})
	}
	return out, nil
}

// ComparePV evaluates every set of c in creation order.
func (e *Evaluator) ComparePV(w *solar.Weather, loc solar.Location, c *paramset.Collection) ([]Result, error) {
	var out []Result
	for _, name := range c.Names() {
		set, _ := c.Set(name)
		tbl, err := e.PVSets(w, loc, set)
		if err != nil {
			return nil, fmt.Errorf("pv set %s: %w", name, err)
		}
		out = append(out, Result{Kind: KindPV, Set: name, Table: tbl})
	}
	return out, nil
}

// Summaries returns one summary per result.
func Summaries(results []Result) []table.Summary {
	out := make([]table.Summary, len(results))
	for i, r := range results {
		out[i] = r.Summary()
	}
	return out
}
