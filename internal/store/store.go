package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedin_simulator/internal/feedin"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/table"
)

// Result is an evaluated parameter set tagged with a run id.
type Result struct {
	ID        uuid.UUID
	Kind      feedin.Kind
	Set       string
	Table     *table.Table
	CreatedAt time.Time
}

type resultKey struct {
	kind feedin.Kind
	set  string
}

// Store holds weather by location id and the latest result per (kind, set).
type Store struct {
	mu      sync.RWMutex
	weather map[string]*model.Weather
	results map[resultKey]Result
	now     func() time.Time
}

func New() *Store {
	return &Store{
		weather: make(map[string]*model.Weather),
		results: make(map[resultKey]Result),
		now:     time.Now,
	}
}

// AddWeather registers the weather of a location, replacing earlier data.
func (s *Store) AddWeather(w *model.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather[w.LocationID] = w
}

// Weather returns the weather of a location.
func (s *Store) Weather(locationID string) (*model.Weather, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weather[locationID]
	return w, ok
}

// Locations returns all location ids in sorted order.
func (s *Store) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.weather))
	for id := range s.weather {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TimeRange returns the time range covered by a location's weather.
func (s *Store) TimeRange(locationID string) (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.weather[locationID]
	if !ok {
		return model.TimeRange{}, false
	}
	return w.TimeRange()
}

// GlobalTimeRange returns the union of all locations' time ranges.
func (s *Store) GlobalTimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start, end time.Time
	first := true

	for _, w := range s.weather {
		tr, ok := w.TimeRange()
		if !ok {
			continue
		}
		if first || tr.Start.Before(start) {
			start = tr.Start
		}
		if first || tr.End.After(end) {
			end = tr.End
		}
		first = false
	}

	if first {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: start, End: end}, true
}

// PutResult stores tbl as the latest result of (kind, set) under a new run id.
func (s *Store) PutResult(kind feedin.Kind, set string, tbl *table.Table) Result {
	r := Result{
		ID:        uuid.New(),
		Kind:      kind,
		Set:       set,
		Table:     tbl,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[resultKey{kind, set}] = r
	return r
}

// Result returns the latest result of (kind, set).
func (s *Store) Result(kind feedin.Kind, set string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[resultKey{kind, set}]
	return r, ok
}

// ResultByID finds a result by its run id.
func (s *Store) ResultByID(id uuid.UUID) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, true
		}
	}
	return Result{}, false
}

// Results returns all stored results, oldest first.
func (s *Store) Results() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Set < out[j].Set
	})
	return out
}
