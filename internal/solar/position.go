// Package solar models the AC output of a PV system from irradiance and
// ambient weather: solar position, irradiance transposition, cell
// temperature, DC power and the inverter.
package solar

import (
	"math"
	"time"

	"feedin_simulator/internal/catalog"
)

const (
	deg = math.Pi / 180
	// solar constant, W/m²
	solarConstant = 1367.0
)

// Location all angles in degrees, altitude in m
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// LocationFromCoordinates maps a coastdat grid point to a Location.
func LocationFromCoordinates(c catalog.Coordinates) Location {
	return Location{
		Name:      c.ID,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Altitude:  c.Altitude,
	}
}

// Position of the sun in degrees. Azimuth is clockwise from north.
type Position struct {
	Zenith    float64
	Elevation float64
	Azimuth   float64
}

// SunPosition returns the apparent position of the sun at t.
func SunPosition(l Location, t time.Time) Position {
	t = t.UTC()
	g := dayAngle(t)
	decl := declination(g)

	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	solarTime := minutes + equationOfTime(g) + 4*l.Longitude
	ha := (solarTime/4 - 180) * deg

	lat := l.Latitude * deg
	cosZen := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(ha)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	zen := math.Acos(cosZen)

	az := math.Atan2(math.Sin(ha), math.Cos(ha)*math.Sin(lat)-math.Tan(decl)*math.Cos(lat))/deg + 180

	return Position{
		Zenith:    zen / deg,
		Elevation: 90 - zen/deg,
		Azimuth:   math.Mod(az+360, 360),
	}
}

func dayAngle(t time.Time) float64 {
	return 2 * math.Pi * float64(t.YearDay()-1) / 365
}

// declination in radians
func declination(g float64) float64 {
	return 0.006918 - 0.399912*math.Cos(g) + 0.070257*math.Sin(g) -
		0.006758*math.Cos(2*g) + 0.000907*math.Sin(2*g) -
		0.002697*math.Cos(3*g) + 0.00148*math.Sin(3*g)
}

// equationOfTime in minutes
func equationOfTime(g float64) float64 {
	return 229.18 * (0.000075 + 0.001868*math.Cos(g) - 0.032077*math.Sin(g) -
		0.014615*math.Cos(2*g) - 0.040849*math.Sin(2*g))
}

// ExtraRadiation returns the extraterrestrial normal irradiance in W/m².
func ExtraRadiation(t time.Time) float64 {
	return solarConstant * (1 + 0.033*math.Cos(2*math.Pi*float64(t.UTC().YearDay())/365))
}

// AirMass is the relative optical air mass (Kasten and Young). NaN below
// the horizon.
func AirMass(zenith float64) float64 {
	if zenith >= 90 {
		return math.NaN()
	}
	return 1 / (math.Cos(zenith*deg) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
}

// ClearSkyDNI estimates direct normal irradiance under a clear sky in W/m².
func ClearSkyDNI(l Location, zenith float64) float64 {
	am := AirMass(zenith)
	if math.IsNaN(am) {
		return 0
	}
	h := l.Altitude / 1000
	return 1353 * ((1-0.14*h)*math.Pow(0.7, math.Pow(am, 0.678)) + 0.14*h)
}
