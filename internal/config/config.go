// Package config loads run configuration from YAML, validated against an
// embedded JSON Schema before it is decoded.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/populace/internal/economy"
	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/policy"
)

//go:embed schema.json
var schemaSource string

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is a full run description.
type Config struct {
	Seed        int64           `yaml:"seed"`
	Population  int             `yaml:"population"`
	Years       int             `yaml:"years"`
	WorldEvents bool            `yaml:"world_events"`
	Resources   economy.Stocks  `yaml:"resources"`
	Policies    []policy.Policy `yaml:"policies"`
	Activate    []string        `yaml:"activate"` // enacted before the first tick
	Clock       Clock           `yaml:"clock"`
	Output      Output          `yaml:"output"`
}

// Clock sets wall-clock pacing for realtime runs.
type Clock struct {
	IntervalMs int     `yaml:"interval_ms"`
	Speed      float64 `yaml:"speed"`
}

// Output names the optional run records. Empty paths disable them.
type Output struct {
	Journal string `yaml:"journal"` // sqlite chronicle
	Events  string `yaml:"events"`  // zstd JSONL event log
}

// Default returns the built-in configuration.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		Population:  opts.Population,
		Years:       100,
		WorldEvents: opts.WorldEvents,
		Resources:   opts.Resources,
		Policies:    opts.Policies,
		Clock:       Clock{IntervalMs: int(engine.DefaultInterval / time.Millisecond), Speed: float64(engine.Speed1x)},
	}
}

// Load reads path and overlays it on Default.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a YAML document and overlays it on Default. Keys absent from
// the document keep their default values; a policies list replaces the
// built-in catalog.
func Parse(raw []byte) (Config, error) {
	if err := validate(raw); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		return nil // empty file: all defaults
	}
	// Round-trip through JSON so the validator sees JSON value types.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.CompileString("config.schema.json", schemaSource)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	return s, nil
}

// check enforces rules the schema cannot express.
func (c Config) check() error {
	ids := make(map[string]bool, len(c.Policies))
	for _, p := range c.Policies {
		if ids[p.ID] {
			return fmt.Errorf("%w: duplicate policy %q", ErrInvalid, p.ID)
		}
		ids[p.ID] = true
	}
	for _, id := range c.Activate {
		if !ids[id] {
			return fmt.Errorf("%w: activate names unknown policy %q", ErrInvalid, id)
		}
	}
	return nil
}

// Options converts the configuration into simulation options.
func (c Config) Options() engine.Options {
	return engine.Options{
		Seed:        c.Seed,
		Population:  c.Population,
		Resources:   c.Resources,
		Policies:    c.Policies,
		WorldEvents: c.WorldEvents,
	}
}

// Interval returns the wall time of one month at 1x.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Clock.IntervalMs) * time.Millisecond
}

// Speed returns the configured multiplier.
func (c Config) Speed() engine.Speed {
	return engine.Speed(c.Clock.Speed)
}
