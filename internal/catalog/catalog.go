// Package catalog provides the named component definitions referenced by
// parameter sets: wind turbines, PV modules, inverters and coastdat grid
// points.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

//go:embed data/*.csv
var dataFS embed.FS

var ErrNotFound = errors.New("not found in catalog")

// FloatList decodes a whitespace or semicolon separated list of numbers.
type FloatList []float64

func (l *FloatList) UnmarshalCSV(s string) error {
	fields := strings.Fields(strings.ReplaceAll(s, ";", " "))
	out := make(FloatList, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", f, err)
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

type Turbine struct {
	Type          string    `csv:"turbine_type"`
	Manufacturer  string    `csv:"manufacturer"`
	RotorDiameter float64   `csv:"rotor_diameter"`
	NominalPower  float64   `csv:"nominal_power"` // W
	WindSpeeds    FloatList `csv:"power_curve_wind_speeds"`
	PowerValues   FloatList `csv:"power_curve_values"` // W
}

func (t Turbine) name() string { return t.Type }

func (t Turbine) validate() error {
	if t.NominalPower <= 0 {
		return fmt.Errorf("nominal power must be positive, got %v", t.NominalPower)
	}
	if len(t.WindSpeeds) != len(t.PowerValues) {
		return fmt.Errorf("power curve has %d wind speeds and %d values", len(t.WindSpeeds), len(t.PowerValues))
	}
	if len(t.WindSpeeds) < 2 {
		return fmt.Errorf("power curve needs at least 2 points, got %d", len(t.WindSpeeds))
	}
	for i := 1; i < len(t.WindSpeeds); i++ {
		if t.WindSpeeds[i] <= t.WindSpeeds[i-1] {
			return fmt.Errorf("power curve wind speeds must increase (%v after %v)", t.WindSpeeds[i], t.WindSpeeds[i-1])
		}
	}
	return nil
}

// Module holds Sandia-style PV module parameters.
type Module struct {
	Name          string  `csv:"name"`
	Manufacturer  string  `csv:"manufacturer"`
	Impo          float64 `csv:"impo"`
	Vmpo          float64 `csv:"vmpo"`
	Isco          float64 `csv:"isco"`
	Voco          float64 `csv:"voco"`
	Area          float64 `csv:"area"`
	CellsInSeries int     `csv:"cells_in_series"`
	GammaPmp      float64 `csv:"gamma_pmp"` // 1/K
	A             float64 `csv:"a"`
	B             float64 `csv:"b"`
	DeltaT        float64 `csv:"delta_t"`
}

func (m Module) name() string { return m.Name }

func (m Module) validate() error {
	if m.Impo <= 0 || m.Vmpo <= 0 {
		return fmt.Errorf("impo and vmpo must be positive")
	}
	return nil
}

// PeakPower returns Impo*Vmpo in W.
func (m Module) PeakPower() float64 {
	return m.Impo * m.Vmpo
}

// Inverter holds Sandia inverter model parameters.
type Inverter struct {
	Name         string  `csv:"name"`
	Manufacturer string  `csv:"manufacturer"`
	Paco         float64 `csv:"paco"`
	Pdco         float64 `csv:"pdco"`
	Vdco         float64 `csv:"vdco"`
	Pso          float64 `csv:"pso"`
	C0           float64 `csv:"c0"`
	C1           float64 `csv:"c1"`
	C2           float64 `csv:"c2"`
	C3           float64 `csv:"c3"`
	Pnt          float64 `csv:"pnt"`
}

func (i Inverter) name() string { return i.Name }

func (i Inverter) validate() error {
	if i.Paco <= 0 || i.Pdco <= i.Pso {
		return fmt.Errorf("paco must be positive and pdco above pso")
	}
	return nil
}

// Coordinates locates a coastdat grid point.
type Coordinates struct {
	ID        string  `csv:"coastdat_id"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
	Altitude  float64 `csv:"altitude"`
}

func (c Coordinates) name() string { return c.ID }

func (c Coordinates) validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", c.Latitude)
	}
	return nil
}

type entry interface {
	name() string
	validate() error
}

// Catalog is a read-only name → definition lookup.
type Catalog[T entry] struct {
	kind   string
	byName map[string]T
	names  []string
}

// Lookup returns the definition registered under name.
func (c *Catalog[T]) Lookup(name string) (T, error) {
	v, ok := c.byName[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.kind, name, ErrNotFound)
	}
	return v, nil
}

// Names returns all names in sorted order.
func (c *Catalog[T]) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Catalog[T]) Len() int {
	return len(c.names)
}

func load[T entry](kind string, r io.Reader) (*Catalog[T], error) {
	var rows []*T
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s catalog: %w", kind, err)
	}
	c := &Catalog[T]{kind: kind, byName: make(map[string]T, len(rows))}
	for i, row := range rows {
		e := *row
		n := e.name()
		if n == "" {
			return nil, fmt.Errorf("%s catalog row %d: empty name", kind, i+2)
		}
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("%s %q: %w", kind, n, err)
		}
		if _, dup := c.byName[n]; dup {
			return nil, fmt.Errorf("%s %q: duplicate entry", kind, n)
		}
		c.byName[n] = e
		c.names = append(c.names, n)
	}
	sort.Strings(c.names)
	return c, nil
}

func loadEmbedded[T entry](kind, file string) (*Catalog[T], error) {
	f, err := dataFS.Open("data/" + file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()
	return load[T](kind, f)
}

func LoadTurbines(r io.Reader) (*Catalog[Turbine], error) {
	return load[Turbine]("turbine", r)
}

func LoadModules(r io.Reader) (*Catalog[Module], error) {
	return load[Module]("module", r)
}

func LoadInverters(r io.Reader) (*Catalog[Inverter], error) {
	return load[Inverter]("inverter", r)
}

func LoadCoordinates(r io.Reader) (*Catalog[Coordinates], error) {
	return load[Coordinates]("coastdat grid point", r)
}

// Catalogs bundles every embedded catalog.
type Catalogs struct {
	Turbines    *Catalog[Turbine]
	Modules     *Catalog[Module]
	Inverters   *Catalog[Inverter]
	Coordinates *Catalog[Coordinates]
}

// Embedded loads the catalogs shipped with the binary.
func Embedded() (*Catalogs, error) {
	turbines, err := loadEmbedded[Turbine]("turbine", "turbines.csv")
	if err != nil {
		return nil, err
	}
	modules, err := loadEmbedded[Module]("module", "modules.csv")
	if err != nil {
		return nil, err
	}
	inverters, err := loadEmbedded[Inverter]("inverter", "inverters.csv")
	if err != nil {
		return nil, err
	}
	coords, err := loadEmbedded[Coordinates]("coastdat grid point", "coastdat_grid.csv")
	if err != nil {
		return nil, err
	}
	return &Catalogs{
		Turbines:    turbines,
		Modules:     modules,
		Inverters:   inverters,
		Coordinates: coords,
	}, nil
}
