// Package feedin evaluates normalised wind and PV feed-in series for single
// parameter records and for whole parameter sets.
package feedin

import (
	"fmt"
	"math"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/config"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/solar"
	"feedin_simulator/internal/table"
	"feedin_simulator/internal/windpower"
)

// Evaluator runs the model chains. It holds no mutable state.
type Evaluator struct {
	catalogs *catalog.Catalogs
	wind     windpower.ModelChain
	pv       solar.ModelChain
}

func New(cats *catalog.Catalogs, cfg *config.Config) *Evaluator {
	return &Evaluator{
		catalogs: cats,
		wind:     windpower.NewModelChain(cfg.WindModel),
	}
}

// Turbine builds a model turbine from a catalog entry.
func Turbine(ct catalog.Turbine, hubHeight float64) windpower.Turbine {
	return windpower.Turbine{
		Name:         ct.Type,
		HubHeight:    hubHeight,
		NominalPower: ct.NominalPower,
		PowerCurve: windpower.PowerCurve{
			WindSpeeds: ct.WindSpeeds,
			Values:     ct.PowerValues,
		},
	}
}

// Wind resolves turbine_type and hub_height of p and returns the feed-in
// scaled to installedCapacity.
func (e *Evaluator) Wind(w *windpower.Weather, p paramset.Params, installedCapacity float64) (model.Series, error) {
	name, err := p.String(paramset.FieldTurbineType)
	if err != nil {
		return model.Series{}, err
	}
	hub, err := p.Float(paramset.FieldHubHeight)
	if err != nil {
		return model.Series{}, err
	}
	ct, err := e.catalogs.Turbines.Lookup(name)
	if err != nil {
		return model.Series{}, err
	}
	return e.WindTurbine(w, Turbine(ct, hub), installedCapacity)
}

// WindTurbine returns the output of t divided by its nominal power and
// multiplied by installedCapacity. Missing values become 0.
func (e *Evaluator) WindTurbine(w *windpower.Weather, t windpower.Turbine, installedCapacity float64) (model.Series, error) {
	power, err := e.wind.Run(w, t)
	if err != nil {
		return model.Series{}, fmt.Errorf("turbine %s: %w", t.Name, err)
	}
	for i, p := range power {
		if math.IsNaN(p) {
			power[i] = 0
			continue
		}
		power[i] = p / t.NominalPower * installedCapacity
	}
	return model.Series{Index: w.Index, Values: power}, nil
}

// System builds a PV system from a resolved parameter record.
func (e *Evaluator) System(p paramset.Params) (solar.System, error) {
	moduleName, err := p.String(paramset.FieldModuleName)
	if err != nil {
		return solar.System{}, err
	}
	inverterName, err := p.String(paramset.FieldInverterName)
	if err != nil {
		return solar.System{}, err
	}
	module, err := e.catalogs.Modules.Lookup(moduleName)
	if err != nil {
		return solar.System{}, err
	}
	inverter, err := e.catalogs.Inverters.Lookup(inverterName)
	if err != nil {
		return solar.System{}, err
	}

	sys := solar.System{Module: module, Inverter: inverter}
	if sys.Azimuth, err = p.Float(paramset.FieldSurfaceAzimuth); err != nil {
		return solar.System{}, err
	}
	if sys.Tilt, err = p.Float(paramset.FieldSurfaceTilt); err != nil {
		return solar.System{}, err
	}
	if sys.Albedo, err = p.FloatOr(paramset.FieldAlbedo, 0.2); err != nil {
		return solar.System{}, err
	}
	mps, err := p.FloatOr(paramset.FieldModulesPerString, 1)
	if err != nil {
		return solar.System{}, err
	}
	spi, err := p.FloatOr(paramset.FieldStringsPerInverter, 1)
	if err != nil {
		return solar.System{}, err
	}
	sys.ModulesPerString = int(mps)
	sys.StringsPerInverter = int(spi)
	return sys, nil
}

// PV resolves module and inverter of p and returns the feed-in scaled to
// installedCapacity.
func (e *Evaluator) PV(loc solar.Location, p paramset.Params, w *solar.Weather, installedCapacity float64) (model.Series, error) {
	sys, err := e.System(p)
	if err != nil {
		return model.Series{}, err
	}
	return e.PVSystem(loc, sys, w, installedCapacity)
}

// PVSystem returns the AC output of sys clipped at 0 and divided by the peak
// power of its modules, multiplied by installedCapacity.
func (e *Evaluator) PVSystem(loc solar.Location, sys solar.System, w *solar.Weather, installedCapacity float64) (model.Series, error) {
	ac, err := e.pv.Run(loc, sys, w)
	if err != nil {
		return model.Series{}, fmt.Errorf("system %s/%s: %w", sys.Module.Name, sys.Inverter.Name, err)
	}
	peak := sys.PeakPower()
	for i, p := range ac {
		if math.IsNaN(p) || p < 0 {
			ac[i] = 0
			continue
		}
		ac[i] = p / peak * installedCapacity
	}
	return model.Series{Index: w.Index, Values: ac}, nil
}

// WindSets evaluates every record of set with an installed capacity of 1.
// The first failing record aborts the batch.
func (e *Evaluator) WindSets(w *windpower.Weather, set *paramset.Set) (*table.Table, error) {
	tbl := table.New(w.Index)
	err := set.Each(func(key string, p paramset.Params) error {
		s, err := e.Wind(w, p, 1)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return tbl.AddColumn(key, s)
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// PVSets evaluates every record of set with an installed capacity of 1.
// The first failing record aborts the batch.
func (e *Evaluator) PVSets(w *solar.Weather, loc solar.Location, set *paramset.Set) (*table.Table, error) {
	tbl := table.New(w.Index)
	err := set.Each(func(key string, p paramset.Params) error {
		s, err := e.PV(loc, p, w, 1)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return tbl.AddColumn(key, s)
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}
