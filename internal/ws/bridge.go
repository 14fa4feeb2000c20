package ws

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"feedin_simulator/internal/feedin"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/solar"
	"feedin_simulator/internal/store"
	"feedin_simulator/internal/windpower"
)

// Inputs are the adapted weather and parameter sets of one location.
type Inputs struct {
	Weather  *model.Weather
	Location solar.Location
	Wind     *windpower.Weather
	PV       *solar.Weather
	WindSets *paramset.Collection
	PVSets   *paramset.Collection
}

// Bridge runs evaluations for the handler, caches them in the store and
// broadcasts finished results to the WebSocket hub. Evaluations run one at a
// time, so concurrent requests for an uncached set share one result.
type Bridge struct {
	mu    sync.Mutex
	hub   *Hub
	store *store.Store
	eval  *feedin.Evaluator
	in    Inputs
}

func NewBridge(hub *Hub, st *store.Store, eval *feedin.Evaluator, in Inputs) *Bridge {
	return &Bridge{hub: hub, store: st, eval: eval, in: in}
}

// Evaluate returns the result of a named set, evaluating it on first use.
func (b *Bridge) Evaluate(kind feedin.Kind, set string) (store.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r, ok := b.store.Result(kind, set); ok {
		return r, nil
	}

	switch kind {
	case feedin.KindWind:
		s, ok := b.in.WindSets.Set(set)
		if !ok {
			return store.Result{}, fmt.Errorf("unknown wind set %q", set)
		}
		tbl, err := b.eval.WindSets(b.in.Wind, s)
		if err != nil {
			return store.Result{}, fmt.Errorf("wind set %s: %w", set, err)
		}
		return b.store.PutResult(kind, set, tbl), nil

	case feedin.KindPV:
		s, ok := b.in.PVSets.Set(set)
		if !ok {
			return store.Result{}, fmt.Errorf("unknown pv set %q", set)
		}
		tbl, err := b.eval.PVSets(b.in.PV, b.in.Location, s)
		if err != nil {
			return store.Result{}, fmt.Errorf("pv set %s: %w", set, err)
		}
		return b.store.PutResult(kind, set, tbl), nil

	default:
		return store.Result{}, fmt.Errorf("unknown kind %q", kind)
	}
}

// Publish broadcasts r to every connected client.
func (b *Bridge) Publish(r store.Result) {
	msg, err := NewEnvelope(TypeFeedinResult, ResultFromStore(r))
	if err != nil {
		log.Printf("Error marshaling result: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

// Results summarises every stored result, oldest first.
func (b *Bridge) Results() ResultsPayload {
	stored := b.store.Results()
	out := ResultsPayload{Results: make([]ResultPayload, len(stored))}
	for i, r := range stored {
		out.Results[i] = ResultFromStore(r)
	}
	return out
}

// Result looks up a stored result by its run id.
func (b *Bridge) Result(id string) (store.Result, error) {
	runID, err := uuid.Parse(id)
	if err != nil {
		return store.Result{}, fmt.Errorf("invalid run id %q", id)
	}
	r, ok := b.store.ResultByID(runID)
	if !ok {
		return store.Result{}, fmt.Errorf("unknown run id %s", id)
	}
	return r, nil
}

// Sets lists the configured wind and PV sets with their column keys.
func (b *Bridge) Sets() SetsPayload {
	return SetsPayload{
		Wind: setInfos(b.in.WindSets),
		PV:   setInfos(b.in.PVSets),
	}
}
