package coastdat

import (
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/config"
	"feedin_simulator/internal/ingest"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/solar"
)

func loadSample(t *testing.T) *model.Weather {
	t.Helper()
	f, err := os.Open("../../testdata/coastdat_weather_sample.csv")
	require.NoError(t, err)
	defer f.Close()

	w, err := ingest.ReadLocation(f, "1126088")
	require.NoError(t, err)
	return w
}

func TestAdaptToWindpower(t *testing.T) {
	w := loadSample(t)
	cfg, err := config.Default()
	require.NoError(t, err)

	ww, err := AdaptToWindpower(w, cfg.DataHeight)
	require.NoError(t, err)

	assert.Equal(t, w.Index, ww.Index)
	assert.Equal(t, 10.0, ww.WindSpeed.Height)
	assert.Equal(t, 2.0, ww.Temperature.Height)
	assert.Equal(t, 0.0, ww.Pressure.Height)
	assert.Equal(t, 0.0, ww.RoughnessLength.Height)

	speed, _ := w.Column(model.VarWindSpeed)
	assert.Equal(t, speed, ww.WindSpeed.Values)
	z0, _ := w.Column(model.VarRoughness)
	assert.Equal(t, z0, ww.RoughnessLength.Values)
}

func TestAdaptToWindpower_Missing(t *testing.T) {
	w := loadSample(t)

	_, err := AdaptToWindpower(w, config.DataHeight{"wind_speed": 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingField))
	assert.Contains(t, err.Error(), "temperature")

	bare := model.NewWeather("1", w.Index)
	_, err = AdaptToWindpower(bare, config.DataHeight{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v_wind")
}

func TestAdaptToPV(t *testing.T) {
	w := loadSample(t)
	loc := solar.Location{Name: "1126088", Latitude: 53.08, Longitude: 8.81, Altitude: 5}

	pv, err := AdaptToPV(w, loc)
	require.NoError(t, err)
	require.Len(t, pv.GHI, w.Len())

	temp, _ := w.Column(model.VarTempAir)
	dhi, _ := w.Column(model.VarDiffuse)
	dirhi, _ := w.Column(model.VarDirectHoriz)
	for i := range w.Index {
		assert.InDelta(t, temp[i]-273.15, pv.TempAir[i], 1e-9)
		assert.InDelta(t, dirhi[i]+dhi[i], pv.GHI[i], 1e-9)
		assert.Equal(t, dhi[i], pv.DHI[i])
		assert.False(t, math.IsNaN(pv.DNI[i]), "dni at %v", w.Index[i])
		assert.GreaterOrEqual(t, pv.DNI[i], 0.0)
	}

	// 2014-06-21 00:00 UTC: night
	assert.Equal(t, 0.0, pv.DNI[0])

	// 2014-06-21 12:00 UTC: beam is dirhi over cos(zenith)
	noon := 12
	require.Equal(t, time.Date(2014, 6, 21, 12, 0, 0, 0, time.UTC), pv.Index[noon])
	zen := solar.SunPosition(loc, pv.Index[noon]).Zenith
	assert.InDelta(t, dirhi[noon]/math.Cos(zen*math.Pi/180), pv.DNI[noon], 1e-6)
}

func TestAdaptToPV_Missing(t *testing.T) {
	w := model.NewWeather("1", []time.Time{time.Now()})
	require.NoError(t, w.Set(model.VarDiffuse, []float64{0}))

	_, err := AdaptToPV(w, solar.Location{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirhi")
}

func TestLocation(t *testing.T) {
	cats, err := catalog.Embedded()
	require.NoError(t, err)

	c, err := Coordinates(cats.Coordinates, "1126088")
	require.NoError(t, err)
	assert.Equal(t, 53.08, c.Latitude)

	loc, err := Location(cats.Coordinates, "1126088")
	require.NoError(t, err)
	assert.Equal(t, solar.Location{Name: "1126088", Latitude: 53.08, Longitude: 8.81, Altitude: 5}, loc)

	_, err = Location(cats.Coordinates, "0")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}
