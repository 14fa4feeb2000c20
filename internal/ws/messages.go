package ws

import (
	"encoding/json"
	"math"
	"time"

	"feedin_simulator/internal/model"
	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/store"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeSetsList     = "sets:list"
	TypeWindEvaluate = "wind:evaluate"
	TypePVEvaluate   = "pv:evaluate"
	TypeResultsList  = "results:list"
	TypeResultGet    = "result:get"

	// Server -> Client
	TypeDataLoaded   = "data:loaded"
	TypeSets         = "sets:list"
	TypeFeedinResult = "feedin:result"
	TypeError        = "error"
)

// Client -> Server messages

type EvaluatePayload struct {
	Set string `json:"set"`
}

type ResultGetPayload struct {
	ID string `json:"id"`
}

// Server -> Client messages

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type VariableInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type DataLoadedPayload struct {
	Location  string         `json:"location"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Rows      int            `json:"rows"`
	TimeRange TimeRangeInfo  `json:"time_range"`
	Variables []VariableInfo `json:"variables"`
	WindSets  []string       `json:"wind_sets"`
	PVSets    []string       `json:"pv_sets"`
}

type SetInfo struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

type SetsPayload struct {
	Wind []SetInfo `json:"wind"`
	PV   []SetInfo `json:"pv"`
}

type ColumnInfo struct {
	Key  string  `json:"key"`
	Sum  float64 `json:"sum"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

type ResultPayload struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	Set       string       `json:"set"`
	Rows      int          `json:"rows"`
	Total     float64      `json:"total"`
	Columns   []ColumnInfo `json:"columns"`
	CreatedAt string       `json:"created_at"`
}

type ResultsPayload struct {
	Results []ResultPayload `json:"results"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// ResultFromStore summarises a stored result. JSON has no NaN, so undefined
// aggregates are sent as 0.
func ResultFromStore(r store.Result) ResultPayload {
	s := r.Table.Summary(r.Set)
	cols := make([]ColumnInfo, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = ColumnInfo{Key: c.Key, Sum: finite(c.Sum), Mean: finite(c.Mean), Max: finite(c.Max)}
	}
	return ResultPayload{
		ID:        r.ID.String(),
		Kind:      string(r.Kind),
		Set:       r.Set,
		Rows:      s.Rows,
		Total:     finite(s.Total()),
		Columns:   cols,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// variableInfos describes the raw weather columns. Variables outside the
// catalog are listed by id only.
func variableInfos(w *model.Weather) []VariableInfo {
	if w == nil {
		return nil
	}
	vars := w.Variables()
	out := make([]VariableInfo, 0, len(vars))
	for _, v := range vars {
		info := model.VariableCatalog[v]
		out = append(out, VariableInfo{ID: string(v), Name: info.Name, Unit: info.Unit})
	}
	return out
}

func setInfos(c *paramset.Collection) []SetInfo {
	out := make([]SetInfo, 0, c.Len())
	for _, name := range c.Names() {
		set, _ := c.Set(name)
		out = append(out, SetInfo{Name: name, Keys: set.Keys()})
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
