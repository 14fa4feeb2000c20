package solar

import (
	"errors"
	"fmt"
	"math"
	"time"

	"feedin_simulator/internal/catalog"
)

var ErrInvalidWeather = errors.New("invalid weather")

// Weather is weather data adapted for the PV model chain.
type Weather struct {
	Index     []time.Time
	GHI       []float64 // W/m²
	DHI       []float64 // W/m²
	DNI       []float64 // W/m²
	TempAir   []float64 // °C
	WindSpeed []float64 // m/s
}

func (w *Weather) validate() error {
	n := len(w.Index)
	for name, col := range map[string][]float64{
		"ghi":        w.GHI,
		"dhi":        w.DHI,
		"dni":        w.DNI,
		"temp_air":   w.TempAir,
		"wind_speed": w.WindSpeed,
	} {
		if len(col) != n {
			return fmt.Errorf("%w: %s has %d values for %d timestamps", ErrInvalidWeather, name, len(col), n)
		}
	}
	return nil
}

// System is one PV installation behind a single inverter.
type System struct {
	Module             catalog.Module
	Inverter           catalog.Inverter
	Azimuth            float64 // degrees clockwise from north
	Tilt               float64 // degrees from horizontal
	Albedo             float64
	ModulesPerString   int
	StringsPerInverter int
}

func (s System) modules() int {
	return s.ModulesPerString * s.StringsPerInverter
}

// PeakPower is the DC power at reference conditions in W.
func (s System) PeakPower() float64 {
	return s.Module.PeakPower() * float64(s.modules())
}

func (s System) validate() error {
	if s.modules() <= 0 {
		return fmt.Errorf("system %s/%s: modules per string and strings per inverter must be positive", s.Module.Name, s.Inverter.Name)
	}
	if s.Tilt < 0 || s.Tilt > 90 {
		return fmt.Errorf("system %s/%s: tilt %v out of range", s.Module.Name, s.Inverter.Name, s.Tilt)
	}
	return nil
}

// ModelChain computes AC power from weather. It has no options.
type ModelChain struct{}

// Run returns the AC output of s in W for every timestamp of w.
func (ModelChain) Run(l Location, s System, w *Weather) ([]float64, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	out := make([]float64, len(w.Index))
	for i, ts := range w.Index {
		sun := SunPosition(l, ts)
		poa := Irradiance(s.Tilt, s.Azimuth, s.Albedo, sun, w.GHI[i], w.DHI[i], w.DNI[i])
		if math.IsNaN(poa.Global) {
			out[i] = math.NaN()
			continue
		}
		tc := CellTemperature(poa.Global, w.TempAir[i], w.WindSpeed[i], s.Module.A, s.Module.B, s.Module.DeltaT)
		dc := DCPower(poa.Global, tc, s.PeakPower(), s.Module.GammaPmp)
		out[i] = InverterPower(s.Inverter, dc, s.Inverter.Vdco)
	}
	return out, nil
}

// DCPower scales the peak power with irradiance and cell temperature.
func DCPower(poa, cellTemp, peakPower, gamma float64) float64 {
	return peakPower * poa / 1000 * (1 + gamma*(cellTemp-25))
}

// InverterPower is the Sandia inverter model. Below the self-consumption
// threshold the inverter draws Pnt from the grid; output is clipped at Paco.
func InverterPower(inv catalog.Inverter, pdc, vdc float64) float64 {
	if math.IsNaN(pdc) {
		return math.NaN()
	}
	if pdc < inv.Pso {
		return -inv.Pnt
	}
	dv := vdc - inv.Vdco
	a := inv.Pdco * (1 + inv.C1*dv)
	b := inv.Pso * (1 + inv.C2*dv)
	c := inv.C0 * (1 + inv.C3*dv)

	ac := (inv.Paco/(a-b)-c*(a-b))*(pdc-b) + c*(pdc-b)*(pdc-b)
	return math.Min(ac, inv.Paco)
}
