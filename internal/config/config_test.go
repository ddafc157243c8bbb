package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWeights(t *testing.T) {
	cfg := Default()
	if cfg.Travel.BaseSpeedKMH != 25 || cfg.Greedy.TravelBeta != 0.015 {
		t.Fatalf("travel defaults: %+v %+v", cfg.Travel, cfg.Greedy)
	}
	if cfg.Anneal.Reads != 3000 || cfg.Anneal.TopN != 10 || cfg.Anneal.MaxTrucks != 2 {
		t.Fatalf("anneal defaults: %+v", cfg.Anneal)
	}
	if cfg.Penalties.UnservedHigh <= cfg.Penalties.UnservedMedium ||
		cfg.Penalties.UnservedMedium <= cfg.Penalties.UnservedLow {
		t.Fatalf("unserved penalties must be tier-ordered: %+v", cfg.Penalties)
	}
	if cfg.Penalties.PerMinHigh <= cfg.Penalties.PerMinLow {
		t.Fatalf("lateness rates must be tier-ordered: %+v", cfg.Penalties)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitroute.yaml")
	overlay := "greedy:\n  travel_beta: 0.02\nanneal:\n  reads: 500\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Greedy.TravelBeta != 0.02 || cfg.Anneal.Reads != 500 {
		t.Fatalf("overlay not applied: %+v %+v", cfg.Greedy, cfg.Anneal)
	}
	// Untouched fields keep their defaults.
	if cfg.Anneal.WeightOnce != Default().Anneal.WeightOnce {
		t.Fatalf("default lost: %v", cfg.Anneal.WeightOnce)
	}
}

func TestLoadMissingFileFailsFast(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file must error")
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("empty path should mean defaults, got %v", err)
	}
}
