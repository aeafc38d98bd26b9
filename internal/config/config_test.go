package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/populace/internal/engine"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.check(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Population <= 0 || cfg.Years != 100 || len(cfg.Policies) == 0 {
		t.Errorf("default = %+v", cfg)
	}
	if cfg.Interval() != time.Second || cfg.Speed() != engine.Speed1x {
		t.Errorf("clock = %v %v", cfg.Interval(), cfg.Speed())
	}
}

func TestParseOverlay(t *testing.T) {
	cfg, err := Parse([]byte(`
seed: 42
population: 250
world_events: false
activate: [austerity]
output:
  journal: run.db
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Seed != 42 || cfg.Population != 250 || cfg.WorldEvents {
		t.Errorf("overlay = %+v", cfg)
	}
	if cfg.Years != 100 {
		t.Errorf("years = %d; want default 100", cfg.Years)
	}
	if cfg.Output.Journal != "run.db" || cfg.Output.Events != "" {
		t.Errorf("output = %+v", cfg.Output)
	}
	opts := cfg.Options()
	if opts.Seed != 42 || opts.Population != 250 || len(opts.Policies) != len(Default().Policies) {
		t.Errorf("options = %+v", opts)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Population != Default().Population {
		t.Errorf("population = %d", cfg.Population)
	}
}

func TestParseCustomPolicies(t *testing.T) {
	cfg, err := Parse([]byte(`
policies:
  - id: harvest_festival
    name: Harvest Festival
    cost: 100
    duration: 2
    effect:
      food_production: 0.5
activate: [harvest_festival]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Policies) != 1 {
		t.Fatalf("policies = %+v; want the custom one only", cfg.Policies)
	}
	p := cfg.Policies[0]
	if p.ID != "harvest_festival" || p.Cost != 100 || p.Duration != 2 || p.Effect.FoodProduction != 0.5 {
		t.Errorf("policy = %+v", p)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "colour: blue\n",
		"negative pop":     "population: -3\n",
		"bad speed":        "clock:\n  speed: 3\n",
		"policy no name":   "policies:\n  - id: x\n",
		"bad policy id":    "policies:\n  - id: Bad-Id\n    name: Bad\n",
		"unknown activate": "activate: [nope]\n",
		"duplicate policy": "policies:\n  - {id: a, name: A}\n  - {id: a, name: B}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: err = %v; want ErrInvalid", name, err)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("population: [1,\n")); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("years: 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Years != 60 {
		t.Errorf("years = %d; want 60", cfg.Years)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestSchemaCompiles(t *testing.T) {
	if _, err := compiledSchema(); err != nil {
		t.Fatal(err)
	}
}
