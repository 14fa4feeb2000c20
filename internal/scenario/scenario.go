// Package scenario loads everything a feed-in run needs: configuration,
// catalogs, weather of one location and the configured parameter sets.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"feedin_simulator/internal/catalog"
	"feedin_simulator/internal/coastdat"
	"feedin_simulator/internal/config"
	"feedin_simulator/internal/feedin"
	"feedin_simulator/internal/ingest"
	"feedin_simulator/internal/model"
	"feedin_simulator/internal/paramset"
	"feedin_simulator/internal/solar"
	"feedin_simulator/internal/store"
	"feedin_simulator/internal/windpower"
)

// Options selects the inputs of a run.
type Options struct {
	// WeatherPath is a coastdat CSV file or a directory of them.
	WeatherPath string
	// ConfigPath overlays the embedded defaults when set.
	ConfigPath string
	// LocationID overrides the configured coastdat location.
	LocationID string
	// Logf receives progress lines. Nil discards them.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Scenario is a fully prepared run.
type Scenario struct {
	Config    *config.Config
	Catalogs  *catalog.Catalogs
	Weather   *model.Weather
	Location  solar.Location
	Wind      *windpower.Weather
	PV        *solar.Weather
	WindSets  *paramset.Collection
	PVSets    *paramset.Collection
	Evaluator *feedin.Evaluator
}

// Load reads configuration, catalogs and weather into st and prepares the
// model inputs of the selected location.
func Load(opts Options, st *store.Store) (*Scenario, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cats, err := catalog.Embedded()
	if err != nil {
		return nil, err
	}

	n, err := LoadWeather(opts.WeatherPath, st, opts.logf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no weather data in %s", opts.WeatherPath)
	}

	id := cfg.Coastdat.LocationID
	if opts.LocationID != "" {
		id = opts.LocationID
	}
	w, ok := st.Weather(id)
	if !ok {
		return nil, fmt.Errorf("location %s: %w (available: %s)", id, ingest.ErrUnknownLocation, strings.Join(st.Locations(), ", "))
	}

	loc, err := coastdat.Location(cats.Coordinates, id)
	if err != nil {
		return nil, err
	}
	wind, err := coastdat.AdaptToWindpower(w, cfg.DataHeight)
	if err != nil {
		return nil, err
	}
	pv, err := coastdat.AdaptToPV(w, loc)
	if err != nil {
		return nil, err
	}

	windSets, err := paramset.CreateWindSets(cfg, cats.Turbines)
	if err != nil {
		return nil, err
	}
	pvSets, err := paramset.CreatePVSets(cfg, cats.Modules, cats.Inverters)
	if err != nil {
		return nil, err
	}
	opts.logf("Prepared %d wind sets and %d PV sets for location %s", windSets.Len(), pvSets.Len(), id)

	return &Scenario{
		Config:    cfg,
		Catalogs:  cats,
		Weather:   w,
		Location:  loc,
		Wind:      wind,
		PV:        pv,
		WindSets:  windSets,
		PVSets:    pvSets,
		Evaluator: feedin.New(cats, cfg),
	}, nil
}

// LoadWeather parses a coastdat CSV file, or every CSV file of a directory,
// into st. It returns the number of distinct locations loaded. When a location
// appears in several files the last file read wins and the replacement is
// logged.
func LoadWeather(path string, st *store.Store, logf func(format string, args ...any)) (int, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("reading weather: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return 0, fmt.Errorf("reading weather directory: %w", err)
		}
		files = files[:0]
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	var parser ingest.Parser = ingest.NewCoastdatParser()
	seen := make(map[string]string)
	for _, file := range files {
		logf("Loading %s...", file)
		f, err := os.Open(file)
		if err != nil {
			return len(seen), fmt.Errorf("opening %s: %w", file, err)
		}
		weather, err := parser.Parse(f)
		f.Close()
		if err != nil {
			return len(seen), fmt.Errorf("parsing %s: %w", file, err)
		}
		for _, w := range weather {
			if prev, ok := seen[w.LocationID]; ok {
				logf("  Location %s from %s replaces %s", w.LocationID, filepath.Base(file), filepath.Base(prev))
			}
			seen[w.LocationID] = file
			st.AddWeather(w)
		}
		logf("  Loaded %d locations from %s", len(weather), filepath.Base(file))
	}
	return len(seen), nil
}
