package paramset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/config"
)

func testCatalogs(t *testing.T) (*config.Config, *catalog.Catalogs) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cats, err := catalog.Embedded()
	require.NoError(t, err)
	return cfg, cats
}

func TestCreateWindSets(t *testing.T) {
	cfg, cats := testCatalogs(t)

	sets, err := CreateWindSets(cfg, cats.Turbines)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, sets.Names())

	set1, ok := sets.Set("1")
	require.True(t, ok)
	assert.Equal(t, []string{
		"ENERCON_127_hub135_7500",
		"ENERCON_82_hub138_2300",
		"ENERCON_82_hub78_3000",
		"ENERCON_82_hub98_2300",
	}, set1.Keys())

	p, ok := set1.Get("ENERCON_82_hub78_3000")
	require.True(t, ok)
	assert.Equal(t, "E-82/3000", p[FieldTurbineType].Raw)
	h, err := p.Float(FieldHubHeight)
	require.NoError(t, err)
	assert.Equal(t, 78.0, h)

	set2, ok := sets.Set("2")
	require.True(t, ok)
	assert.Equal(t, 3, set2.Len())
}

func TestCreateWindSets_UnknownTurbine(t *testing.T) {
	cfg, cats := testCatalogs(t)
	cfg.WindSets = map[string]config.Record{
		"9": {FieldTurbineType: "X-1/1", FieldHubHeight: "80"},
	}

	_, err := CreateWindSets(cfg, cats.Turbines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	assert.Contains(t, err.Error(), "wind set 9")
}

func TestCreateWindSets_MissingHubHeight(t *testing.T) {
	cfg, cats := testCatalogs(t)
	cfg.WindSets = map[string]config.Record{
		"1": {FieldTurbineType: "E-82/2300"},
	}

	_, err := CreateWindSets(cfg, cats.Turbines)
	assert.True(t, errors.Is(err, config.ErrMissingField))
}

func TestCreatePVSets(t *testing.T) {
	cfg, cats := testCatalogs(t)

	sets, err := CreatePVSets(cfg, cats.Modules, cats.Inverters)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"M_STP280S__I_GEPVb_5000_NA_240",
		"M_BP2150S__I_P235HV_240",
		"M_SF160S__I_ABB_MICRO_025_US208",
		"M_LG290G3__I_ABB_MICRO_025_US208",
	}, sets.Names())

	set, ok := sets.Set("M_SF160S__I_ABB_MICRO_025_US208")
	require.True(t, ok)
	// three azimuths crossed with three tilts
	assert.Equal(t, 9, set.Len())

	err = set.Each(func(key string, p Params) error {
		assert.Equal(t, "SF160S", p[FieldModuleName].Raw, key)
		assert.Equal(t, "ABB_MICRO_025_US208", p[FieldInverterName].Raw, key)
		albedo, err := p.Float(FieldAlbedo)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, albedo, 1e-12)
		return nil
	})
	require.NoError(t, err)
}

func TestCreatePVSets_UnknownModule(t *testing.T) {
	cfg, cats := testCatalogs(t)
	cfg.SolarSets = map[string]config.Record{
		"s": {
			FieldModuleName:     "NOPE",
			FieldInverterName:   "P235HV_240",
			FieldSurfaceAzimuth: "180",
			FieldSurfaceTilt:    "30",
			FieldAlbedo:         "0.2",
		},
	}

	_, err := CreatePVSets(cfg, cats.Modules, cats.Inverters)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestCreatePVSets_MissingOrientation(t *testing.T) {
	cfg, cats := testCatalogs(t)
	cfg.SolarSets = map[string]config.Record{
		"s": {FieldModuleName: "STP280S", FieldInverterName: "P235HV_240"},
	}

	_, err := CreatePVSets(cfg, cats.Modules, cats.Inverters)
	assert.True(t, errors.Is(err, config.ErrMissingField))
}

func TestCreatePVSets_RepeatedCombination(t *testing.T) {
	cfg, cats := testCatalogs(t)
	cfg.SolarSets = map[string]config.Record{
		"s": {
			FieldModuleName:     "SF160S, SF160S, SF160S",
			FieldInverterName:   "ABB_MICRO_025_US208",
			FieldSurfaceAzimuth: "180",
			FieldSurfaceTilt:    "30",
			FieldAlbedo:         "0.2",
		},
	}

	sets, err := CreatePVSets(cfg, cats.Modules, cats.Inverters)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"M_SF160S__I_ABB_MICRO_025_US208",
		"M_SF160S__I_ABB_MICRO_025_US208_s",
		"M_SF160S__I_ABB_MICRO_025_US208_s_2",
	}, sets.Names())
	assert.Equal(t, 3, sets.Len())
}

func TestUniqueName(t *testing.T) {
	c := newCollection()
	assert.Equal(t, "a", uniqueName(c, "a", "x"))
	c.add("a", newSet())
	assert.Equal(t, "a_x", uniqueName(c, "a", "x"))
	c.add("a_x", newSet())
	c.add("a_x_2", newSet())
	assert.Equal(t, "a_x_3", uniqueName(c, "a", "x"))
}
