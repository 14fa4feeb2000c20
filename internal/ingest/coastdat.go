package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"feedin_simulator/internal/model"
)

var ErrUnknownLocation = errors.New("unknown location")

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// Unix timestamps need at least nine integer digits, so a truncated date such
// as "2014" is rejected instead of landing in 1970.
const minUnixSeconds = 1e8

// CoastdatParser parses coastdat weather CSV exports with a two-row header.
//
// Expected format:
//
//	timeindex,1126088,1126088,...
//	,dhi,dirhi,...
//	2014-01-01 00:00:00+00:00,0.0,0.0,...
//
// The first header row holds the location id, the second the variable name.
type CoastdatParser struct{}

func NewCoastdatParser() *CoastdatParser {
	return &CoastdatParser{}
}

type column struct {
	location string
	variable model.Variable
}

func (p *CoastdatParser) Parse(r io.Reader) (map[string]*model.Weather, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	locations, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	variables, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV variable header: %w", err)
	}
	columns, err := parseHeader(locations, variables)
	if err != nil {
		return nil, err
	}

	var index []time.Time
	values := make([][]float64, len(columns))
	lineNum := 2

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		ts, row, err := parseRow(record, len(columns), lineNum)
		if err != nil {
			// Skip rows with a broken timestamp or value
			continue
		}
		index = append(index, ts)
		for i, v := range row {
			values[i] = append(values[i], v)
		}
	}

	out := make(map[string]*model.Weather)
	for i, c := range columns {
		w, ok := out[c.location]
		if !ok {
			w = model.NewWeather(c.location, index)
			out[c.location] = w
		}
		if err := w.Set(c.variable, values[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseHeader(locations, variables []string) ([]column, error) {
	if len(locations) < 2 {
		return nil, fmt.Errorf("expected at least 2 columns, got %d", len(locations))
	}
	if len(variables) != len(locations) {
		return nil, fmt.Errorf("header rows differ in length: %d location ids, %d variables", len(locations), len(variables))
	}

	seen := make(map[column]bool)
	columns := make([]column, 0, len(locations)-1)
	for i := 1; i < len(locations); i++ {
		c := column{
			location: strings.TrimSpace(locations[i]),
			variable: model.Variable(strings.TrimSpace(variables[i])),
		}
		if c.location == "" || c.variable == "" {
			return nil, fmt.Errorf("column %d: empty location id or variable", i)
		}
		if seen[c] {
			return nil, fmt.Errorf("column %d: duplicate variable %s for location %s", i, c.variable, c.location)
		}
		seen[c] = true
		columns = append(columns, c)
	}
	return columns, nil
}

func parseRow(record []string, n, lineNum int) (time.Time, []float64, error) {
	if len(record) != n+1 {
		return time.Time{}, nil, fmt.Errorf("line %d: expected %d fields, got %d", lineNum, n+1, len(record))
	}

	ts, err := ParseTimestamp(record[0])
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("line %d: %w", lineNum, err)
	}

	row := make([]float64, n)
	for i, field := range record[1:] {
		field = strings.TrimSpace(field)
		if field == "" {
			row[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("line %d: parsing value %q: %w", lineNum, field, err)
		}
		row[i] = v
	}
	return ts, row, nil
}

// ParseTimestamp accepts RFC 3339, space-separated timestamps with or
// without offset (UTC when missing) and unix seconds of at least nine digits.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && math.Abs(secs) >= minUnixSeconds {
		sec, frac := math.Modf(secs)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: unknown format", s)
}

// ReadLocation parses r and returns the weather of a single location.
func ReadLocation(r io.Reader, locationID string) (*model.Weather, error) {
	all, err := NewCoastdatParser().Parse(r)
	if err != nil {
		return nil, err
	}
	w, ok := all[locationID]
	if !ok {
		return nil, fmt.Errorf("location %s: %w", locationID, ErrUnknownLocation)
	}
	return w, nil
}
