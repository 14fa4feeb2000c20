package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"feedin_simulator/internal/scenario"
	"feedin_simulator/internal/store"
	"feedin_simulator/internal/ws"
)

func main() {
	weather := pflag.StringP("weather", "w", "input", "coastdat CSV file or directory of CSV files")
	configPath := pflag.StringP("config", "c", "", "YAML file overlaying the default configuration")
	location := pflag.StringP("location", "l", "", "coastdat location id (default from configuration)")
	frontendDir := pflag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	addr := pflag.String("addr", ":8080", "listen address")
	pflag.Parse()

	dataStore := store.New()
	sc, err := scenario.Load(scenario.Options{
		WeatherPath: *weather,
		ConfigPath:  *configPath,
		LocationID:  *location,
		Logf:        log.Printf,
	}, dataStore)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	tr, ok := dataStore.TimeRange(sc.Weather.LocationID)
	if !ok {
		log.Fatal("No data loaded")
	}
	log.Printf("Data loaded: %s to %s", tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02"))
	if all, ok := dataStore.GlobalTimeRange(); ok && len(dataStore.Locations()) > 1 {
		log.Printf("Store holds %d locations covering %s to %s",
			len(dataStore.Locations()), all.Start.Format("2006-01-02"), all.End.Format("2006-01-02"))
	}

	// Set up WebSocket hub and evaluation bridge
	hub := ws.NewHub()
	bridge := ws.NewBridge(hub, dataStore, sc.Evaluator, ws.Inputs{
		Weather:  sc.Weather,
		Location: sc.Location,
		Wind:     sc.Wind,
		PV:       sc.PV,
		WindSets: sc.WindSets,
		PVSets:   sc.PVSets,
	})
	handler := ws.NewHandler(hub, bridge)

	mux := newMux(handler, *frontendDir)

	log.Printf("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}

// newMux routes /health, /ws and, when present, the frontend build.
func newMux(handler http.Handler, frontendDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/ws", handler)

	// Serve frontend static files
	if _, err := os.Stat(frontendDir); err == nil {
		log.Printf("Serving frontend from %s", frontendDir)
		mux.Handle("/", http.FileServer(http.Dir(frontendDir)))
	}
	return mux
}
