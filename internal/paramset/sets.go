package paramset

import (
	"fmt"
	"strconv"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/config"
)

// Wind and PV parameter field names.
const (
	FieldTurbineType = "turbine_type"
	FieldHubHeight   = "hub_height"

	FieldModuleName         = "module_name"
	FieldInverterName       = "inverter_name"
	FieldSurfaceAzimuth     = "surface_azimuth"
	FieldSurfaceTilt        = "surface_tilt"
	FieldAlbedo             = "albedo"
	FieldModulesPerString   = "modules_per_string"
	FieldStringsPerInverter = "strings_per_inverter"
)

// CreateWindSets builds one set per configured wind set. Turbine type and hub
// height vary together; keys look like ENERCON_127_hub135_7500.
func CreateWindSets(cfg *config.Config, turbines *catalog.Catalog[catalog.Turbine]) (*Collection, error) {
	out := newCollection()
	for _, id := range cfg.WindSetIDs() {
		rec, err := cfg.WindSet(id)
		if err != nil {
			return nil, err
		}
		set, err := Build(rec,
			Require(FieldTurbineType, FieldHubHeight),
			Linked(FieldTurbineType, FieldHubHeight),
			WithKey(windKey(turbines)),
		)
		if err != nil {
			return nil, fmt.Errorf("wind set %s: %w", id, err)
		}
		out.add(id, set)
	}
	return out, nil
}

func windKey(turbines *catalog.Catalog[catalog.Turbine]) KeyFunc {
	return func(c Choice) (string, error) {
		name, err := c.Params.String(FieldTurbineType)
		if err != nil {
			return "", err
		}
		hub, err := c.Params.String(FieldHubHeight)
		if err != nil {
			return "", err
		}
		t, err := turbines.Lookup(name)
		if err != nil {
			return "", err
		}
		return SanitizeKey(fmt.Sprintf("%s_%s_hub%s_%s",
			t.Manufacturer, formatNumber(t.RotorDiameter), hub, formatNumber(t.NominalPower/1000))), nil
	}
}

// CreatePVSets builds one set per module/inverter combination found in the
// solar sets. Inside a set the orientation fields are crossed. Keys look like
// M_STP280S__I_GEPVb_5000_NA_240.
func CreatePVSets(cfg *config.Config, modules *catalog.Catalog[catalog.Module], inverters *catalog.Catalog[catalog.Inverter]) (*Collection, error) {
	out := newCollection()
	for _, id := range cfg.SolarSetIDs() {
		rec, err := cfg.SolarSet(id)
		if err != nil {
			return nil, err
		}
		if err := rec.Require(FieldModuleName, FieldInverterName, FieldSurfaceAzimuth, FieldSurfaceTilt, FieldAlbedo); err != nil {
			return nil, fmt.Errorf("solar set %s: %w", id, err)
		}

		combos, err := Build(config.Record{
			FieldModuleName:   rec[FieldModuleName],
			FieldInverterName: rec[FieldInverterName],
		}, Linked(FieldModuleName, FieldInverterName))
		if err != nil {
			return nil, fmt.Errorf("solar set %s: %w", id, err)
		}

		err = combos.Each(func(_ string, p Params) error {
			module, inverter := p[FieldModuleName].Raw, p[FieldInverterName].Raw
			if _, err := modules.Lookup(module); err != nil {
				return err
			}
			if _, err := inverters.Lookup(inverter); err != nil {
				return err
			}

			sub := rec.Clone()
			sub[FieldModuleName] = module
			sub[FieldInverterName] = inverter
			set, err := Build(sub)
			if err != nil {
				return err
			}

			out.add(uniqueName(out, fmt.Sprintf("M_%s__I_%s", module, inverter), id), set)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("solar set %s: %w", id, err)
		}
	}
	return out, nil
}

// uniqueName returns name, or name suffixed with the solar set id and a
// counter when a set of that name already exists.
func uniqueName(c *Collection, name, id string) string {
	if !c.has(name) {
		return name
	}
	candidate := name + "_" + id
	for n := 2; c.has(candidate); n++ {
		candidate = fmt.Sprintf("%s_%s_%d", name, id, n)
	}
	return candidate
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
