package solar

import "math"

const (
	// above this zenith angle dni is undefined
	zeroDNIZenith = 88.0
	// between this and zeroDNIZenith dni is capped by the clear-sky value
	clearSkyLimitZenith = 80.0
	clearSkyTolerance   = 1.1
)

// DNI decomposes global and diffuse horizontal irradiance into direct normal
// irradiance. Near the horizon the result is limited to clearSky times a
// tolerance. Undefined values are NaN.
func DNI(ghi, dhi, zenith, clearSky float64) float64 {
	if math.IsNaN(ghi) || math.IsNaN(dhi) || math.IsNaN(zenith) {
		return math.NaN()
	}
	dni := (ghi - dhi) / math.Cos(zenith*deg)
	if zenith > zeroDNIZenith || ghi < 0 || dni < 0 {
		return math.NaN()
	}
	if zenith >= clearSkyLimitZenith && dni > clearSky*clearSkyTolerance {
		return clearSky * clearSkyTolerance
	}
	return dni
}

// AngleOfIncidence between the sun and the surface normal, in degrees.
func AngleOfIncidence(tilt, surfaceAzimuth float64, sun Position) float64 {
	cos := math.Cos(sun.Zenith*deg)*math.Cos(tilt*deg) +
		math.Sin(sun.Zenith*deg)*math.Sin(tilt*deg)*math.Cos((sun.Azimuth-surfaceAzimuth)*deg)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) / deg
}

// POA is plane-of-array irradiance in W/m².
type POA struct {
	Global  float64
	Direct  float64
	Diffuse float64
	Ground  float64
}

// Irradiance transposes horizontal irradiance onto a tilted surface with the
// isotropic sky model.
func Irradiance(tilt, surfaceAzimuth, albedo float64, sun Position, ghi, dhi, dni float64) POA {
	var p POA
	aoi := AngleOfIncidence(tilt, surfaceAzimuth, sun)
	if aoi < 90 && !math.IsNaN(dni) {
		p.Direct = dni * math.Cos(aoi*deg)
	}
	p.Diffuse = dhi * (1 + math.Cos(tilt*deg)) / 2
	p.Ground = ghi * albedo * (1 - math.Cos(tilt*deg)) / 2
	p.Global = p.Direct + p.Diffuse + p.Ground
	return p
}

// CellTemperature uses the Sandia module temperature model. a, b and deltaT
// come from the module parameters; tempAir is in °C, windSpeed in m/s.
func CellTemperature(poa, tempAir, windSpeed, a, b, deltaT float64) float64 {
	module := poa*math.Exp(a+b*windSpeed) + tempAir
	return module + poa/1000*deltaT
}
