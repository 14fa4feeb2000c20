package ingest

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedin_simulator/internal/model"
)

func TestCoastdatParser_Parse(t *testing.T) {
	input := `timeindex,1126088,1126088,1129087
,v_wind,temp_air,v_wind
2014-01-01 00:00:00+00:00,5.2,275.3,4.1
2014-01-01 01:00:00+00:00,5.8,275.1,4.4
2014-01-01 02:00:00+00:00,6.1,274.9,4.9`

	weather, err := NewCoastdatParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, weather, 2)

	w := weather["1126088"]
	require.NotNil(t, w)
	assert.Equal(t, "1126088", w.LocationID)
	require.Equal(t, 3, w.Len())
	assert.Equal(t, time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), w.Index[0])
	assert.Equal(t, []model.Variable{model.VarTempAir, model.VarWindSpeed}, w.Variables())

	wind, ok := w.Column(model.VarWindSpeed)
	require.True(t, ok)
	assert.Equal(t, []float64{5.2, 5.8, 6.1}, wind)

	other, ok := weather["1129087"].Column(model.VarWindSpeed)
	require.True(t, ok)
	assert.Equal(t, []float64{4.1, 4.4, 4.9}, other)
	_, ok = weather["1129087"].Column(model.VarTempAir)
	assert.False(t, ok)
}

func TestCoastdatParser_SkipsBrokenRows(t *testing.T) {
	input := `timeindex,1126088,1126088
,v_wind,Z0
2014-01-01 00:00:00+00:00,5.2,0.1
not a time,5.8,0.1
2014-01-01 02:00:00+00:00,n/a,0.1
2014-01-01 03:00:00+00:00,6.1
2014-01-01 04:00:00+00:00,,0.1`

	weather, err := NewCoastdatParser().Parse(strings.NewReader(input))
	require.NoError(t, err)

	w := weather["1126088"]
	require.Equal(t, 2, w.Len())
	wind, _ := w.Column(model.VarWindSpeed)
	assert.Equal(t, 5.2, wind[0])
	assert.True(t, math.IsNaN(wind[1]), "empty value is missing, not broken")
	assert.Equal(t, time.Date(2014, 1, 1, 4, 0, 0, 0, time.UTC), w.Index[1])
}

func TestCoastdatParser_InvalidHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "header"},
		{"single header row", "timeindex,1126088\n", "variable header"},
		{"no data columns", "timeindex\nx\n", "at least 2 columns"},
		{"empty variable", "timeindex,1126088\n,\n", "empty location id or variable"},
		{"duplicate", "timeindex,1,1\n,v_wind,v_wind\n", "duplicate variable"},
		{"length mismatch", "timeindex,1,1\n,v_wind\n", "differ in length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoastdatParser().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2014, 6, 21, 12, 0, 0, 0, time.UTC)
	tests := []string{
		"2014-06-21T12:00:00Z",
		"2014-06-21T14:00:00+02:00",
		"2014-06-21 12:00:00+00:00",
		"2014-06-21 12:00:00",
		" 2014-06-21 12:00:00 ",
		"1403352000",
		"1403352000.0",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			ts, err := ParseTimestamp(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(ts), "got %v", ts)
			assert.Equal(t, time.UTC, ts.Location())
		})
	}

	for _, in := range []string{"21.06.2014", "2014", "20140621", "-1"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestParse_TruncatedTimestampSkipped(t *testing.T) {
	in := "timeindex,1126088\n" +
		",temp_air\n" +
		"2014-06-21 00:00:00+00:00,290\n" +
		"2014,291\n" +
		"2014-06-21 01:00:00+00:00,292\n"

	all, err := NewCoastdatParser().Parse(strings.NewReader(in))
	require.NoError(t, err)
	w := all["1126088"]
	require.NotNil(t, w)
	require.Equal(t, 2, w.Len())
	for _, ts := range w.Index {
		assert.Equal(t, 2014, ts.Year())
	}
	temp, ok := w.Column(model.VarTempAir)
	require.True(t, ok)
	assert.Equal(t, []float64{290, 292}, temp)
}

func TestReadLocation(t *testing.T) {
	input := "timeindex,1126088\n,v_wind\n2014-01-01 00:00:00,5\n"

	w, err := ReadLocation(strings.NewReader(input), "1126088")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Len())

	_, err = ReadLocation(strings.NewReader(input), "42")
	assert.True(t, errors.Is(err, ErrUnknownLocation))
	assert.Contains(t, err.Error(), "42")
}

func TestCoastdatParser_SampleFile(t *testing.T) {
	f, err := os.Open("../../testdata/coastdat_weather_sample.csv")
	require.NoError(t, err)
	defer f.Close()

	var p Parser = NewCoastdatParser()
	weather, err := p.Parse(f)
	require.NoError(t, err)
	require.Len(t, weather, 2)

	for id, w := range weather {
		assert.Equal(t, 48, w.Len(), id)
		assert.Len(t, w.Variables(), 6, id)
		rng, ok := w.TimeRange()
		require.True(t, ok)
		assert.Equal(t, time.Date(2014, 6, 21, 0, 0, 0, 0, time.UTC), rng.Start)
		assert.Equal(t, time.Date(2014, 6, 22, 23, 0, 0, 0, time.UTC), rng.End)
	}

	z0, err := weather["1129087"].MustColumn(model.VarRoughness)
	require.NoError(t, err)
	assert.Equal(t, 0.5, z0[0])
}
