// Package coastdat converts coastdat weather into the inputs of the wind and
// PV model chains.
package coastdat

import (
	"fmt"
	"math"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/config"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/solar"
	"feedin_simulator/internal/windpower"
)

const kelvin = 273.15

// AdaptToWindpower renames the coastdat wind variables and attaches their
// measurement heights.
func AdaptToWindpower(w *model.Weather, heights config.DataHeight) (*windpower.Weather, error) {
	measure := func(v model.Variable, name string) (windpower.Measurement, error) {
		values, err := w.MustColumn(v)
		if err != nil {
			return windpower.Measurement{}, err
		}
		h, err := heights.Height(name)
		if err != nil {
			return windpower.Measurement{}, fmt.Errorf("location %s: %w", w.LocationID, err)
		}
		return windpower.Measurement{Height: h, Values: values}, nil
	}

	speed, err := measure(model.VarWindSpeed, "wind_speed")
	if err != nil {
		return nil, err
	}
	temp, err := measure(model.VarTempAir, "temperature")
	if err != nil {
		return nil, err
	}
	pressure, err := measure(model.VarPressure, "pressure")
	if err != nil {
		return nil, err
	}
	z0, err := measure(model.VarRoughness, "roughness_length")
	if err != nil {
		return nil, err
	}

	return &windpower.Weather{
		Index:           w.Index,
		WindSpeed:       speed,
		Temperature:     temp,
		Pressure:        pressure,
		RoughnessLength: z0,
	}, nil
}

// AdaptToPV derives global and direct normal irradiance for loc and converts
// the air temperature to °C.
func AdaptToPV(w *model.Weather, loc solar.Location) (*solar.Weather, error) {
	dhi, err := w.MustColumn(model.VarDiffuse)
	if err != nil {
		return nil, err
	}
	dirhi, err := w.MustColumn(model.VarDirectHoriz)
	if err != nil {
		return nil, err
	}
	temp, err := w.MustColumn(model.VarTempAir)
	if err != nil {
		return nil, err
	}
	wind, err := w.MustColumn(model.VarWindSpeed)
	if err != nil {
		return nil, err
	}

	n := w.Len()
	out := &solar.Weather{
		Index:     w.Index,
		GHI:       make([]float64, n),
		DHI:       make([]float64, n),
		DNI:       make([]float64, n),
		TempAir:   make([]float64, n),
		WindSpeed: make([]float64, n),
	}
	for i, ts := range w.Index {
		ghi := dirhi[i] + dhi[i]
		zen := solar.SunPosition(loc, ts).Zenith

		dni := solar.DNI(ghi, dhi[i], zen, solar.ClearSkyDNI(loc, zen))
		if math.IsNaN(dni) && !math.IsNaN(ghi) {
			// sun at or below the horizon
			dni = 0
		}

		out.GHI[i] = ghi
		out.DHI[i] = dhi[i]
		out.DNI[i] = dni
		out.TempAir[i] = temp[i] - kelvin
		out.WindSpeed[i] = wind[i]
	}
	return out, nil
}

// Coordinates looks up the grid point of a coastdat location.
func Coordinates(coords *catalog.Catalog[catalog.Coordinates], id string) (catalog.Coordinates, error) {
	return coords.Lookup(id)
}

// Location returns the PV location of a coastdat grid point.
func Location(coords *catalog.Catalog[catalog.Coordinates], id string) (solar.Location, error) {
	c, err := Coordinates(coords, id)
	if err != nil {
		return solar.Location{}, err
	}
	return solar.LocationFromCoordinates(c), nil
}
