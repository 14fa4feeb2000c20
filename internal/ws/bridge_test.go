package ws

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/coastdat"
	"feedin_simulator/internal/config"
	"feedin_simulator/internal/feedin"
	"feedin_simulator/internal/ingest"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/store"
	"feedin_simulator/internal/table"
)

var startTime = time.Date(2014, 6, 21, 0, 0, 0, 0, time.UTC)

// testInputs loads the sample weather and the default sets.
func testInputs(t *testing.T) (*feedin.Evaluator, Inputs) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cats, err := catalog.Embedded()
	require.NoError(t, err)

	f, err := os.Open("../../testdata/coastdat_weather_sample.csv")
	require.NoError(t, err)
	defer f.Close()
	raw, err := ingest.ReadLocation(f, "1126088")
	require.NoError(t, err)

	loc, err := coastdat.Location(cats.Coordinates, raw.LocationID)
	require.NoError(t, err)
	wind, err := coastdat.AdaptToWindpower(raw, cfg.DataHeight)
	require.NoError(t, err)
	pv, err := coastdat.AdaptToPV(raw, loc)
	require.NoError(t, err)
	windSets, err := paramset.CreateWindSets(cfg, cats.Turbines)
	require.NoError(t, err)
	pvSets, err := paramset.CreatePVSets(cfg, cats.Modules, cats.Inverters)
	require.NoError(t, err)

	return feedin.New(cats, cfg), Inputs{
		Weather:  raw,
		Location: loc,
		Wind:     wind,
		PV:       pv,
		WindSets: windSets,
		PVSets:   pvSets,
	}
}

func newTestBridge(t *testing.T) (*Bridge, *store.Store, *Client) {
	t.Helper()
	eval, in := testInputs(t)
	hub := NewHub()
	client := &Client{hub: hub, send: make(chan []byte, 256)}
	hub.Register(client)
	st := store.New()
	return NewBridge(hub, st, eval, in), st, client
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	msg := <-c.send
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestBridge_EvaluateWind(t *testing.T) {
	bridge, st, _ := newTestBridge(t)

	r, err := bridge.Evaluate(feedin.KindWind, "1")
	require.NoError(t, err)
	assert.Equal(t, feedin.KindWind, r.Kind)
	assert.Equal(t, 4, r.Table.Width())
	assert.Equal(t, 48, r.Table.Len())

	cached, ok := st.Result(feedin.KindWind, "1")
	require.True(t, ok)
	assert.Equal(t, r.ID, cached.ID)

	again, err := bridge.Evaluate(feedin.KindWind, "1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, again.ID, "second request is served from the store")
}

func TestBridge_EvaluateConcurrent(t *testing.T) {
	bridge, st, _ := newTestBridge(t)

	const n = 8
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := bridge.Evaluate(feedin.KindWind, "2")
			assert.NoError(t, err)
			ids[i] = r.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, st.Results(), 1)
}

func TestBridge_Results(t *testing.T) {
	bridge, _, _ := newTestBridge(t)
	assert.Empty(t, bridge.Results().Results)

	wind, err := bridge.Evaluate(feedin.KindWind, "2")
	require.NoError(t, err)
	pv, err := bridge.Evaluate(feedin.KindPV, "M_BP2150S__I_P235HV_240")
	require.NoError(t, err)

	list := bridge.Results().Results
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []string{wind.ID.String(), pv.ID.String()}, []string{list[0].ID, list[1].ID})

	got, err := bridge.Result(pv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "M_BP2150S__I_P235HV_240", got.Set)

	_, err = bridge.Result("not-a-uuid")
	assert.ErrorContains(t, err, "invalid run id")
	_, err = bridge.Result(uuid.NewString())
	assert.ErrorContains(t, err, "unknown run id")
}

func TestVariableInfos(t *testing.T) {
	assert.Nil(t, variableInfos(nil))

	w := model.NewWeather("1", []time.Time{startTime})
	require.NoError(t, w.Set(model.VarWindSpeed, []float64{5}))
	require.NoError(t, w.Set(model.Variable("snow"), []float64{0}))

	assert.Equal(t, []VariableInfo{
		{ID: "snow"},
		{ID: "v_wind", Name: "Wind Speed", Unit: "m/s"},
	}, variableInfos(w))
}

func TestBridge_EvaluatePV(t *testing.T) {
	bridge, _, _ := newTestBridge(t)

	r, err := bridge.Evaluate(feedin.KindPV, "M_BP2150S__I_P235HV_240")
	require.NoError(t, err)
	assert.Equal(t, 9, r.Table.Width())
}

func TestBridge_EvaluateErrors(t *testing.T) {
	bridge, st, _ := newTestBridge(t)

	_, err := bridge.Evaluate(feedin.KindWind, "99")
	assert.ErrorContains(t, err, "unknown wind set")
	_, err = bridge.Evaluate(feedin.KindPV, "1")
	assert.ErrorContains(t, err, "unknown pv set")
	_, err = bridge.Evaluate("hydro", "1")
	assert.ErrorContains(t, err, "unknown kind")

	assert.Empty(t, st.Results())
}

func TestBridge_Publish(t *testing.T) {
	bridge, _, client := newTestBridge(t)

	idx := []time.Time{startTime, startTime.Add(time.Hour)}
	tbl := table.New(idx)
	require.NoError(t, tbl.AddColumn("a", model.Series{Index: idx, Values: []float64{0.5, 1}}))
	r := store.Result{ID: uuid.New(), Kind: feedin.KindWind, Set: "1", Table: tbl, CreatedAt: startTime}

	bridge.Publish(r)

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeFeedinResult, env.Type)

	var p ResultPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, r.ID.String(), p.ID)
	assert.Equal(t, "wind", p.Kind)
	assert.Equal(t, 2, p.Rows)
	assert.Equal(t, 1.5, p.Total)
	assert.Equal(t, "2014-06-21T00:00:00Z", p.CreatedAt)
	require.Len(t, p.Columns, 1)
	assert.Equal(t, ColumnInfo{Key: "a", Sum: 1.5, Mean: 0.75, Max: 1}, p.Columns[0])
}

func TestResultFromStore_EmptyTable(t *testing.T) {
	tbl := table.New(nil)
	require.NoError(t, tbl.AddColumn("a", model.Series{}))

	p := ResultFromStore(store.Result{ID: uuid.New(), Kind: feedin.KindPV, Set: "x", Table: tbl})
	assert.Equal(t, 0.0, p.Columns[0].Mean, "NaN mean is sent as 0")

	_, err := json.Marshal(p)
	assert.NoError(t, err)
}

func TestBridge_Sets(t *testing.T) {
	bridge, _, _ := newTestBridge(t)

	sets := bridge.Sets()
	require.Len(t, sets.Wind, 2)
	assert.Equal(t, "1", sets.Wind[0].Name)
	assert.Len(t, sets.Wind[0].Keys, 4)
	require.Len(t, sets.PV, 4)
	assert.Equal(t, "M_STP280S__I_GEPVb_5000_NA_240", sets.PV[0].Name)
	assert.Len(t, sets.PV[0].Keys, 9)
}
