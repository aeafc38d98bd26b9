package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/persistence"
)

func TestParseFlagsOverrides(t *testing.T) {
	f, set, err := parseFlags([]string{"-years", "3", "-seed", "7", "-policy", "austerity", "-policy", "child_subsidy,family_planning", "-speed", "2x"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg, err := loadConfig(f, set)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Years != 3 || cfg.Seed != 7 || cfg.Speed() != engine.Speed2x {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.Activate, ",") != "austerity,child_subsidy,family_planning" {
		t.Errorf("activate = %v", cfg.Activate)
	}
}

func TestLoadConfigRejectsBadSpeed(t *testing.T) {
	f, set, err := parseFlags([]string{"-speed", "4x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(f, set); err == nil {
		t.Error("speed 4x accepted")
	}
}

func TestRunWritesRecords(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "run.db")
	events := filepath.Join(dir, "events")

	f, set, err := parseFlags([]string{"-years", "3", "-seed", "99", "-journal", journal, "-events", events, "-policy", "austerity"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(f, set)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(cfg, f, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "populace report") {
		t.Errorf("report missing header:\n%s", out.String())
	}

	c, err := persistence.Open(journal)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	runs, err := c.Runs()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, %v", runs, err)
	}
	if runs[0].Seed != 99 {
		t.Errorf("seed = %d", runs[0].Seed)
	}

	entries, err := os.ReadDir(events)
	if err != nil || len(entries) != 1 {
		t.Fatalf("event dir = %v, %v", entries, err)
	}
	logged, err := persistence.ReadEventLog(filepath.Join(events, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if len(logged) == 0 || logged[0].Kind != engine.EventPolicyActivated {
		t.Errorf("first logged event = %+v", logged)
	}
}
