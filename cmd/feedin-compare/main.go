package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"feedin_simulator/internal/feedin"
	"feedin_simulator/internal/report"
	"feedin_simulator/internal/scenario"
	"feedin_simulator/internal/store"
	"feedin_simulator/internal/table"
)

func main() {
	weather := pflag.StringP("weather", "w", "input", "coastdat CSV file or directory of CSV files")
	configPath := pflag.StringP("config", "c", "", "YAML file overlaying the default configuration")
	location := pflag.StringP("location", "l", "", "coastdat location id (default from configuration)")
	kind := pflag.StringP("kind", "k", "all", "which sets to evaluate: wind, pv or all")
	csvDir := pflag.String("csv-dir", "", "write one CSV per set into this directory")
	plotDir := pflag.String("plot-dir", "", "write one PNG per set into this directory")
	plotKind := pflag.String("plot-kind", "duration", "plot style: duration or timeseries")
	pflag.Parse()

	if *kind != "all" && *kind != string(feedin.KindWind) && *kind != string(feedin.KindPV) {
		log.Fatalf("Invalid kind %q: want wind, pv or all", *kind)
	}
	renderPlot, err := plotFunc(*plotKind)
	if err != nil {
		log.Fatal(err)
	}

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

	var results []feedin.Result
	if *kind != string(feedin.KindPV) {
		r, err := sc.Evaluator.CompareWind(sc.Wind, sc.WindSets)
		if err != nil {
			log.Fatalf("Evaluating wind sets: %v", err)
		}
		results = append(results, r...)
	}
	if *kind != string(feedin.KindWind) {
		r, err := sc.Evaluator.ComparePV(sc.PV, sc.Location, sc.PVSets)
		if err != nil {
			log.Fatalf("Evaluating PV sets: %v", err)
		}
		results = append(results, r...)
	}

	for _, r := range results {
		stored := dataStore.PutResult(r.Kind, r.Set, r.Table)
		fmt.Fprintf(os.Stderr, "  %s set %s done (%d columns, run %s)\n", r.Kind, r.Set, r.Table.Width(), stored.ID)
	}

	tr, _ := dataStore.TimeRange(sc.Weather.LocationID)
	printTable(os.Stdout, results, header{
		location: sc.Location.Name,
		lat:      sc.Location.Latitude,
		lon:      sc.Location.Longitude,
		start:    tr.Start.Format("2006-01-02 15:04"),
		end:      tr.End.Format("2006-01-02 15:04"),
		rows:     sc.Weather.Len(),
	})

	if *csvDir != "" {
		if err := writeCSVs(*csvDir, results); err != nil {
			log.Fatalf("Writing CSV: %v", err)
		}
	}
	if *plotDir != "" {
		if err := writePlots(*plotDir, results, renderPlot); err != nil {
			log.Fatalf("Writing plots: %v", err)
		}
	}
}

type header struct {
	location   string
	lat, lon   float64
	start, end string
	rows       int
}

func printTable(w io.Writer, results []feedin.Result, h header) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Feed-in Comparison")
	fmt.Fprintf(w, "  Location: %s (%.2f°N, %.2f°E)\n", h.location, h.lat, h.lon)
	fmt.Fprintf(w, "  Data: %s to %s (%d hours)\n", h.start, h.end, h.rows)
	fmt.Fprintln(w, "  Values are full-load hours per installed unit")
	fmt.Fprintln(w)

	fmt.Fprintf(w, " %-4s │ %-34s │ %-40s │ %10s │ %8s │ %8s\n",
		"Kind", "Set", "Column", "Full-load h", "Mean", "Max")
	fmt.Fprintf(w, "──────┼────────────────────────────────────┼──────────────────────────────────────────┼─────────────┼──────────┼──────────\n")

	for j, s := range feedin.Summaries(results) {
		r := results[j]
		for i, c := range s.Columns {
			kind, set := "", ""
			if i == 0 {
				kind, set = string(r.Kind), truncate(r.Set, 34)
			}
			fmt.Fprintf(w, " %-4s │ %-34s │ %-40s │ %11.1f │ %8.3f │ %8.3f\n",
				kind, set, truncate(c.Key, 40), c.Sum, c.Mean, c.Max)
		}
		fmt.Fprintf(w, " %-4s │ %-34s │ %40s │ %11.1f │ %8s │ %8s\n",
			"", "", "set mean", setMean(s), "", "")
	}
	fmt.Fprintln(w)
}

// setMean is the average full-load hours over the columns of a set.
func setMean(s table.Summary) float64 {
	if len(s.Columns) == 0 {
		return 0
	}
	return s.Total() / float64(len(s.Columns))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// fileName returns a file name for a result, e.g. wind_set_1.csv.
func fileName(r feedin.Result, ext string) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(r.Set)
	return fmt.Sprintf("%s_set_%s.%s", r.Kind, name, ext)
}

func writeCSVs(dir string, results []feedin.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, r := range results {
		path := filepath.Join(dir, fileName(r, "csv"))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := r.Table.WriteCSV(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	return nil
}

// plotFunc returns the report renderer named by kind.
func plotFunc(kind string) (func(*table.Table, string) ([]byte, error), error) {
	switch kind {
	case "duration":
		return report.DurationCurve, nil
	case "timeseries":
		return report.TimeSeries, nil
	default:
		return nil, fmt.Errorf("invalid plot kind %q: want duration or timeseries", kind)
	}
}

func writePlots(dir string, results []feedin.Result, render func(*table.Table, string) ([]byte, error)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, r := range results {
		img, err := render(r.Table, fmt.Sprintf("%s set %s", r.Kind, r.Set))
		if err != nil {
			return fmt.Errorf("%s set %s: %w", r.Kind, r.Set, err)
		}
		path := filepath.Join(dir, fileName(r, "png"))
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	return nil
}
