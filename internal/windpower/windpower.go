// Package windpower computes the power output of a wind turbine from
// weather measured at known heights.
package windpower

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"feedin_simulator/internal/config"
)

var ErrInvalidWeather = errors.New("invalid weather")

const (
	// standard air density at sea level, kg/m³
	stdDensity = 1.225
	// specific gas constant of dry air, J/(kg·K)
	gasConstant = 287.058
	// temperature gradient of the standard atmosphere, K/m
	lapseRate = 0.0065
)

// Measurement is a weather variable measured at Height metres.
type Measurement struct {
	Height float64
	Values []float64
}

// Weather is weather data adapted for the wind model chain.
type Weather struct {
	Index           []time.Time
	WindSpeed       Measurement // m/s
	Temperature     Measurement // K
	Pressure        Measurement // Pa
	RoughnessLength Measurement // m
}

func (w *Weather) validate() error {
	n := len(w.Index)
	for name, m := range map[string]Measurement{
		"wind_speed":       w.WindSpeed,
		"temperature":      w.Temperature,
		"pressure":         w.Pressure,
		"roughness_length": w.RoughnessLength,
	} {
		if len(m.Values) != n {
			return fmt.Errorf("%w: %s has %d values for %d timestamps", ErrInvalidWeather, name, len(m.Values), n)
		}
	}
	return nil
}

// PowerCurve maps wind speed (m/s) to power (W).
type PowerCurve struct {
	WindSpeeds []float64
	Values     []float64
}

type Turbine struct {
	Name         string
	HubHeight    float64 // m
	NominalPower float64 // W
	PowerCurve   PowerCurve
}

func (t Turbine) validate() error {
	if t.HubHeight <= 0 {
		return fmt.Errorf("turbine %s: hub height must be positive, got %v", t.Name, t.HubHeight)
	}
	if t.NominalPower <= 0 {
		return fmt.Errorf("turbine %s: nominal power must be positive, got %v", t.Name, t.NominalPower)
	}
	pc := t.PowerCurve
	if len(pc.WindSpeeds) < 2 || len(pc.WindSpeeds) != len(pc.Values) {
		return fmt.Errorf("turbine %s: invalid power curve (%d speeds, %d values)", t.Name, len(pc.WindSpeeds), len(pc.Values))
	}
	for i := 1; i < len(pc.WindSpeeds); i++ {
		if pc.WindSpeeds[i] <= pc.WindSpeeds[i-1] {
			return fmt.Errorf("turbine %s: power curve wind speeds must increase", t.Name)
		}
	}
	return nil
}

// ModelChain selects the sub-models used to get from weather to power.
type ModelChain struct {
	WindSpeedModel    string
	TemperatureModel  string
	DensityModel      string
	DensityCorrection bool
	ObstacleHeight    float64
	HellmanExponent   float64
}

// NewModelChain maps the windpowerlib configuration section.
func NewModelChain(c config.WindModel) ModelChain {
	return ModelChain{
		WindSpeedModel:    c.WindSpeedModel,
		TemperatureModel:  c.TemperatureModel,
		DensityModel:      c.DensityModel,
		DensityCorrection: c.DensityCorrection,
		ObstacleHeight:    c.ObstacleHeight,
		HellmanExponent:   c.HellmanExponent,
	}
}

// Run returns the power output of t in W for every timestamp of w.
// Timestamps with missing input yield NaN.
func (mc ModelChain) Run(w *Weather, t Turbine) ([]float64, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}

	var curve interp.PiecewiseLinear
	if err := curve.Fit(t.PowerCurve.WindSpeeds, t.PowerCurve.Values); err != nil {
		return nil, fmt.Errorf("turbine %s: fitting power curve: %w", t.Name, err)
	}

	out := make([]float64, len(w.Index))
	for i := range w.Index {
		v, err := mc.hubWindSpeed(w, i, t.HubHeight)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Index[i].Format(time.RFC3339), err)
		}
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if !mc.DensityCorrection {
			out[i] = lookup(&curve, t.PowerCurve, v)
			continue
		}

		temp, err := mc.hubTemperature(w, i, t.HubHeight)
		if err != nil {
			return nil, err
		}
		rho, err := mc.hubDensity(w, i, t.HubHeight, temp)
		if err != nil {
			return nil, err
		}
		out[i] = densityCorrectedPower(t.PowerCurve, v, rho)
	}
	return out, nil
}

// lookup interpolates the power curve; outside the curve the turbine is idle.
func lookup(curve *interp.PiecewiseLinear, pc PowerCurve, v float64) float64 {
	if v < pc.WindSpeeds[0] || v > pc.WindSpeeds[len(pc.WindSpeeds)-1] {
		return 0
	}
	return curve.Predict(v)
}

func (mc ModelChain) hubWindSpeed(w *Weather, i int, hubHeight float64) (float64, error) {
	v := w.WindSpeed.Values[i]
	h := w.WindSpeed.Height
	if hubHeight == h {
		return v, nil
	}
	z0 := w.RoughnessLength.Values[i]

	switch mc.WindSpeedModel {
	case config.WindSpeedLogarithmic:
		return LogarithmicProfile(v, h, hubHeight, z0, mc.ObstacleHeight)
	case config.WindSpeedHellman:
		return HellmanProfile(v, h, hubHeight, z0, mc.HellmanExponent), nil
	default:
		return 0, fmt.Errorf("unknown wind speed model %q", mc.WindSpeedModel)
	}
}

func (mc ModelChain) hubTemperature(w *Weather, i int, hubHeight float64) (float64, error) {
	switch mc.TemperatureModel {
	case config.TemperatureLinearGradient:
		return LinearGradient(w.Temperature.Values[i], w.Temperature.Height, hubHeight), nil
	default:
		return 0, fmt.Errorf("unknown temperature model %q", mc.TemperatureModel)
	}
}

func (mc ModelChain) hubDensity(w *Weather, i int, hubHeight, temp float64) (float64, error) {
	p := w.Pressure.Values[i]
	h := w.Pressure.Height
	switch mc.DensityModel {
	case config.DensityBarometric:
		return BarometricDensity(p, h, hubHeight, temp), nil
	case config.DensityIdealGas:
		return IdealGasDensity(p, h, hubHeight, temp), nil
	default:
		return 0, fmt.Errorf("unknown density model %q", mc.DensityModel)
	}
}

// LogarithmicProfile scales wind speed v measured at dataHeight to hubHeight.
// The displacement height is 0.7 times the obstacle height.
func LogarithmicProfile(v, dataHeight, hubHeight, roughness, obstacleHeight float64) (float64, error) {
	if math.IsNaN(v) || math.IsNaN(roughness) {
		return math.NaN(), nil
	}
	if roughness <= 0 {
		return 0, fmt.Errorf("%w: roughness length must be positive, got %v", ErrInvalidWeather, roughness)
	}
	d := 0.7 * obstacleHeight
	if dataHeight-d <= roughness || hubHeight-d <= roughness {
		return 0, fmt.Errorf("%w: heights must exceed displacement plus roughness length", ErrInvalidWeather)
	}
	return v * math.Log((hubHeight-d)/roughness) / math.Log((dataHeight-d)/roughness), nil
}

// HellmanProfile scales v with the power law. A non-positive exponent is
// derived from the roughness length, or 1/7 without one.
func HellmanProfile(v, dataHeight, hubHeight, roughness, exponent float64) float64 {
	if exponent <= 0 {
		if roughness > 0 && !math.IsNaN(roughness) {
			exponent = 1 / math.Log(hubHeight/roughness)
		} else {
			exponent = 1.0 / 7
		}
	}
	return v * math.Pow(hubHeight/dataHeight, exponent)
}

// LinearGradient extrapolates temperature (K) with the standard lapse rate.
func LinearGradient(temp, dataHeight, hubHeight float64) float64 {
	return temp - lapseRate*(hubHeight-dataHeight)
}

// BarometricDensity returns air density in kg/m³ from the barometric height equation.
func BarometricDensity(pressure, pressureHeight, hubHeight, temp float64) float64 {
	return (pressure/100 - (hubHeight-pressureHeight)/8) * stdDensity * 288.15 * 100 / (101330 * temp)
}

// IdealGasDensity returns air density in kg/m³ from the ideal gas equation.
func IdealGasDensity(pressure, pressureHeight, hubHeight, temp float64) float64 {
	return (pressure/100 - (hubHeight-pressureHeight)/8) * 100 / (gasConstant * temp)
}

// densityCorrectedPower shifts the power curve's wind speeds to the site
// density before interpolating.
func densityCorrectedPower(pc PowerCurve, v, rho float64) float64 {
	if math.IsNaN(rho) || rho <= 0 {
		return math.NaN()
	}
	speeds := make([]float64, len(pc.WindSpeeds))
	for i, s := range pc.WindSpeeds {
		speeds[i] = s * math.Pow(stdDensity/rho, densityExponent(s))
	}
	for i := 1; i < len(speeds); i++ {
		if speeds[i] <= speeds[i-1] {
			speeds[i] = math.Nextafter(speeds[i-1], math.Inf(1))
		}
	}
	corrected := PowerCurve{WindSpeeds: speeds, Values: pc.Values}
	var curve interp.PiecewiseLinear
	if err := curve.Fit(corrected.WindSpeeds, corrected.Values); err != nil {
		return math.NaN()
	}
	return lookup(&curve, corrected, v)
}

// densityExponent is 1/3 up to 7.5 m/s, 2/3 from 12.5 m/s, linear in between.
func densityExponent(v float64) float64 {
	switch {
	case v <= 7.5:
		return 1.0 / 3
	case v >= 12.5:
		return 2.0 / 3
	default:
		return 1.0/3 + (v-7.5)/15
	}
}
