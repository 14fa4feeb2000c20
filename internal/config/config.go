package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrUnknownSet = errors.New("unknown parameter set")

// Wind model chain names understood by the windpower package.
const (
	WindSpeedLogarithmic = "logarithmic"
	WindSpeedHellman     = "hellman"

	TemperatureLinearGradient = "linear_gradient"

	DensityBarometric = "barometric"
	DensityIdealGas   = "ideal_gas"

	PowerOutputPowerCurve = "power_curve"
)

// Config is the complete feed-in configuration. It is passed explicitly to
// every component that needs it.
type Config struct {
	Coastdat   Coastdat          `yaml:"coastdat"`
	DataHeight DataHeight        `yaml:"coastdat_data_height"`
	WindModel  WindModel         `yaml:"windpowerlib"`
	WindSets   map[string]Record `yaml:"wind_sets"`
	SolarSets  map[string]Record `yaml:"solar_sets"`
}

type Coastdat struct {
	LocationID string `yaml:"location_id"`
}

// DataHeight maps a weather variable to its measurement height in metres.
type DataHeight map[string]float64

// WindModel selects the sub-models of the wind model chain.
type WindModel struct {
	WindSpeedModel    string  `yaml:"wind_speed_model"`
	TemperatureModel  string  `yaml:"temperature_model"`
	DensityModel      string  `yaml:"density_model"`
	PowerOutputModel  string  `yaml:"power_output_model"`
	DensityCorrection bool    `yaml:"density_correction"`
	ObstacleHeight    float64 `yaml:"obstacle_height"`
	HellmanExponent   float64 `yaml:"hellman_exp"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		return nil, fmt.Errorf("decoding default config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	return &c, nil
}

// Load reads path and decodes it on top of the defaults. An empty path
// returns the defaults. Scalars in the file replace their default. The
// wind_sets and solar_sets maps are merged by id: a file can add a set or
// replace one with the same id, but the default sets stay in place.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := c.Decode(data); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return c, nil
}

// Decode decodes data on top of c and validates the result. Map sections
// are merged key by key.
func (c *Config) Decode(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the enumerated model names.
func (c *Config) Validate() error {
	switch c.WindModel.WindSpeedModel {
	case WindSpeedLogarithmic, WindSpeedHellman:
	default:
		return fmt.Errorf("windpowerlib: unknown wind_speed_model %q", c.WindModel.WindSpeedModel)
	}
	switch c.WindModel.TemperatureModel {
	case TemperatureLinearGradient:
	default:
		return fmt.Errorf("windpowerlib: unknown temperature_model %q", c.WindModel.TemperatureModel)
	}
	switch c.WindModel.DensityModel {
	case DensityBarometric, DensityIdealGas:
	default:
		return fmt.Errorf("windpowerlib: unknown density_model %q", c.WindModel.DensityModel)
	}
	if c.WindModel.PowerOutputModel != PowerOutputPowerCurve {
		return fmt.Errorf("windpowerlib: unknown power_output_model %q", c.WindModel.PowerOutputModel)
	}
	return nil
}

// WindSet returns the wind parameter record registered under id.
func (c *Config) WindSet(id string) (Record, error) {
	rec, ok := c.WindSets[id]
	if !ok {
		return nil, fmt.Errorf("%w: wind set %q", ErrUnknownSet, id)
	}
	return rec.Clone(), nil
}

// SolarSet returns the PV parameter record registered under id.
func (c *Config) SolarSet(id string) (Record, error) {
	rec, ok := c.SolarSets[id]
	if !ok {
		return nil, fmt.Errorf("%w: solar set %q", ErrUnknownSet, id)
	}
	return rec.Clone(), nil
}

// WindSetIDs returns the wind set ids, numeric ids in numeric order.
func (c *Config) WindSetIDs() []string {
	return sortedIDs(c.WindSets)
}

// SolarSetIDs returns the solar set ids, numeric ids in numeric order.
func (c *Config) SolarSetIDs() []string {
	return sortedIDs(c.SolarSets)
}

// Height returns the measurement height of variable.
func (h DataHeight) Height(variable string) (float64, error) {
	v, ok := h[variable]
	if !ok {
		return 0, fmt.Errorf("coastdat_data_height: %w %q", ErrMissingField, variable)
	}
	return v, nil
}

func sortedIDs(m map[string]Record) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
