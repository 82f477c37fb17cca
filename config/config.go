// Package config provides YAML-driven configuration for the
// simulation: embedded defaults merged with an optional user file.
//
// Grounded on config/config.go's embed+merge+singleton pattern:
// go:embed a defaults.yaml, unmarshal it first, then unmarshal a
// user-supplied path over the same struct so only fields present in
// the override file change, and expose a process-global singleton set
// up once at startup via Init and read thereafter via Cfg.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration sections.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Collision CollisionConfig `yaml:"collision"`
	Fields    FieldsConfig    `yaml:"fields"`
	Record    RecordConfig    `yaml:"record"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig sizes the simulation's rectangular world, particle
// capacity, and spatial grid.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Capacity     int     `yaml:"capacity"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// PhysicsConfig holds the integrator's per-step scalars.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`
	Gravity float64 `yaml:"gravity"`
	WindX   float64 `yaml:"wind_x"`
	WindY   float64 `yaml:"wind_y"`
}

// CollisionConfig mirrors collide.Settings for YAML loading.
type CollisionConfig struct {
	Radius      float64 `yaml:"radius"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	Enabled     bool    `yaml:"enabled"`
}

// FieldSpec describes one force field to install at startup. Kind is
// one of "radial", "directional", "vortex", "attractor" and is
// resolved to a field.Kind by the caller (config does not import
// field, to keep this a leaf package).
type FieldSpec struct {
	Kind     string  `yaml:"kind"`
	CenterX  float64 `yaml:"center_x"`
	CenterY  float64 `yaml:"center_y"`
	Strength float64 `yaml:"strength"`
	Radius   float64 `yaml:"radius"`
	DirX     float64 `yaml:"dir_x"`
	DirY     float64 `yaml:"dir_y"`
}

// FieldsConfig lists the force fields to install at startup.
type FieldsConfig struct {
	Items []FieldSpec `yaml:"items"`
}

// RecordConfig configures the optional external record source bound
// to particles at startup (see record.Registry/record.Bind).
type RecordConfig struct {
	Type          string `yaml:"type"` // "", "csv", "json", "sysmetrics"
	Path          string `yaml:"path"`
	MaxRecords    int    `yaml:"max_records"`
	MaxLineLength int    `yaml:"max_line_length"`
	MaxColumns    int    `yaml:"max_columns"`
	MaxRows       int    `yaml:"max_rows"`
}

// RenderConfig sizes the terminal framebuffer and frame pacing.
type RenderConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Glyph     string `yaml:"glyph"`
}

// TelemetryConfig sizes the perf sample window and CSV export.
type TelemetryConfig struct {
	StatsWindow    int    `yaml:"stats_window"`
	ExportPath     string `yaml:"export_path"`
	ExportInterval int    `yaml:"export_interval"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	Gravity32 float32
	WindX32   float32
	WindY32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// WriteYAML marshals the configuration back to a YAML file, used by
// telemetry.OutputManager to snapshot the effective config alongside
// an experiment's recorded output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Gravity32 = float32(c.Physics.Gravity)
	c.Derived.WindX32 = float32(c.Physics.WindX)
	c.Derived.WindY32 = float32(c.Physics.WindY)
}
