package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Evolution.Population != 60 {
		t.Errorf("population = %d, want 60", cfg.Evolution.Population)
	}
	if cfg.EliteCount() != 24 {
		t.Errorf("elite count = %d, want 24", cfg.EliteCount())
	}
	if cfg.SurvivorCount() != 12 {
		t.Errorf("survivor count = %d, want 12", cfg.SurvivorCount())
	}

	// 420 + 420 for the default 540px screen with pipes in [80, 500] and gap 160
	if math.Abs(cfg.Derived.YShift-420) > 1e-9 {
		t.Errorf("YShift = %v, want 420", cfg.Derived.YShift)
	}
	if math.Abs(cfg.Derived.Normalizer-800) > 1e-9 {
		t.Errorf("Normalizer = %v, want 800", cfg.Derived.Normalizer)
	}
	if math.Abs(cfg.Derived.TickMillis-1000.0/30) > 1e-9 {
		t.Errorf("TickMillis = %v, want %v", cfg.Derived.TickMillis, 1000.0/30)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"population below two", func(c *Config) { c.Evolution.Population = 1 }},
		{"elite count below two", func(c *Config) { c.Evolution.EliteFraction = 0.02 }},
		{"negative fraction", func(c *Config) { c.Evolution.SurvivorFraction = -0.1 }},
		{"fraction above one", func(c *Config) { c.Evolution.CrossoverMix = 1.5 }},
		{"NaN probability", func(c *Config) { c.Evolution.WeightMutationProb = math.NaN() }},
		{"elite plus survivors exceed population", func(c *Config) {
			c.Evolution.EliteFraction = 0.7
			c.Evolution.SurvivorFraction = 0.5
		}},
		{"wrong input count", func(c *Config) { c.Neural.Inputs = 3 }},
		{"no hidden units", func(c *Config) { c.Neural.Hidden = 0 }},
		{"empty weight range", func(c *Config) { c.Neural.WeightMin = 1 }},
		{"gap does not fit", func(c *Config) { c.Pipes.Max = 200 }},
		{"zero fps", func(c *Config) { c.Screen.FPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("evolution:\n  population: 10\n  elite_fraction: 0.3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Evolution.Population != 10 {
		t.Errorf("population = %d, want 10", cfg.Evolution.Population)
	}
	if cfg.EliteCount() != 3 {
		t.Errorf("elite count = %d, want 3", cfg.EliteCount())
	}
	// Untouched keys keep their defaults
	if cfg.Neural.Hidden != 5 {
		t.Errorf("hidden = %d, want default 5", cfg.Neural.Hidden)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("evolution:\n  population: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() = %v, want ErrInvalid", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Evolution.CrossoverMix = 0.25

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Evolution.CrossoverMix != 0.25 {
		t.Errorf("crossover_mix = %v, want 0.25", loaded.Evolution.CrossoverMix)
	}
}
