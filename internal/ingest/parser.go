package ingest

import (
	"io"

	"feedin_simulator/internal/model"
)

// Parser reads weather data from a source, keyed by location id.
type Parser interface {
	Parse(r io.Reader) (map[string]*model.Weather, error)
}
