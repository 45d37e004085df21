package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/flocking"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/sensor"
)

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "config.schema.json"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// World Dimensions
	WorldWidth  float32 `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float32 `json:"worldHeight" yaml:"worldHeight"`

	// Population
	NumAgents int    `json:"numAgents" yaml:"numAgents"`
	Layout    string `json:"layout" yaml:"layout"` // center or grid

	// Stepping
	DeltaTime  float32 `json:"deltaTime" yaml:"deltaTime"` // estimator dt, seconds
	Workers    int     `json:"workers" yaml:"workers"`
	Broadphase string  `json:"broadphase" yaml:"broadphase"` // brute or grid
	TickRate   int     `json:"tickRate" yaml:"tickRate"`     // ticks per second for real-time hosts
	Ticks      int     `json:"ticks" yaml:"ticks"`           // headless run length, 0 means until interrupted

	// Estimator input
	Sensor sensor.Config `json:"sensor" yaml:"sensor"`

	// Viewer
	DisplayEstimates    bool `json:"displayEstimates" yaml:"displayEstimates"`
	DisplayNeighborhood bool `json:"displayNeighborhood" yaml:"displayNeighborhood"`

	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:  800,
		WorldHeight: 600,
		NumAgents:   80,
		Layout:      flocking.LayoutCenter.String(),
		DeltaTime:   1.0 / 60,
		Workers:     1,
		Broadphase:  flocking.BroadphaseBrute.String(),
		TickRate:    60,
		Ticks:       600,
		Sensor: sensor.Config{
			Model:     sensor.ModelPerfect,
			StdDev:    1,
			Amplitude: 5,
			Frequency: 0.02,
			Seed:      1,
		},
		DisplayEstimates: true,
		LogLevel:         "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file and validates it
// against the schema. An empty schemaFile selects the embedded schema. Keys
// absent from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	isYAML := isYAMLFile(configFile)

	// 3. Validate
	var v interface{}
	if isYAML {
		err = yaml.Unmarshal(b, &v)
	} else {
		err = json.NewDecoder(bytes.NewReader(b)).Decode(&v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", configFile, err)
	}
	if v == nil {
		v = map[string]interface{}{}
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if isYAML {
		err = yaml.Unmarshal(b, cfg)
	} else {
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		return jsonschema.Compile(schemaFile)
	}
	return jsonschema.CompileString(configSchemaURL, configSchema)
}

func isYAMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks the invariants the schema cannot see, for configs built in
// code rather than loaded from a file.
func (c *Config) Validate() error {
	if !(c.WorldWidth > 0) || !(c.WorldHeight > 0) {
		return fmt.Errorf("%w: world must be positive, got %vx%v", ErrInvalidConfig, c.WorldWidth, c.WorldHeight)
	}
	if c.NumAgents < 0 {
		return fmt.Errorf("%w: numAgents %d is negative", ErrInvalidConfig, c.NumAgents)
	}
	if !(c.DeltaTime > 0) {
		return fmt.Errorf("%w: deltaTime must be positive, got %v", ErrInvalidConfig, c.DeltaTime)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tickRate must be positive, got %d", ErrInvalidConfig, c.TickRate)
	}
	if _, err := c.FlockOptions(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) Arena() flocking.Arena {
	return flocking.Arena{Width: c.WorldWidth, Height: c.WorldHeight}
}

// TickInterval is the wall-clock period between ticks for real-time hosts.
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// FlockOptions translates the config into flocking options.
func (c *Config) FlockOptions() ([]flocking.Option, error) {
	layout, err := ParseLayout(c.Layout)
	if err != nil {
		return nil, err
	}
	broadphase, err := ParseBroadphase(c.Broadphase)
	if err != nil {
		return nil, err
	}
	sensors, err := sensor.NewFactory(c.Sensor)
	if err != nil {
		return nil, err
	}
	return []flocking.Option{
		flocking.WithLayout(layout),
		flocking.WithBroadphase(broadphase),
		flocking.WithWorkers(c.Workers),
		flocking.WithSensors(sensors),
	}, nil
}

// NewFlock builds the flock described by c.
func (c *Config) NewFlock() (*flocking.Flock, error) {
	opts, err := c.FlockOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return flocking.NewFlock(c.NumAgents, c.Arena(), opts...)
}

func ParseLayout(s string) (flocking.Layout, error) {
	switch s {
	case "", "center":
		return flocking.LayoutCenter, nil
	case "grid":
		return flocking.LayoutGrid, nil
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

func ParseBroadphase(s string) (flocking.Broadphase, error) {
	switch s {
	case "", "brute":
		return flocking.BroadphaseBrute, nil
	case "grid":
		return flocking.BroadphaseGrid, nil
	}
	return 0, fmt.Errorf("unknown broadphase %q", s)
}
