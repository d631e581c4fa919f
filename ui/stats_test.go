package ui

import (
	"testing"

	"github.com/pthm-cable/flappy/telemetry"
)

func TestGenerationSectionsText(t *testing.T) {
	s := telemetry.GenerationStats{
		Generation:   7,
		Birds:        60,
		BestFitness:  812.3,
		MeanFitness:  120.5,
		StdFitness:   33.3,
		PipeDeaths:   45,
		MeanLivedMs:  2500,
		PipesCleared: 3,
		Elite:        24,
		Survivors:    12,
		Offspring:    24,
	}

	want := map[string]string{
		"generation": "7",
		"best":       "812.3",
		"mean":       "120.5 (sd 33.3)",
		"pipes":      "3",
		"lived":      "2.5s",
		"split":      "24 / 12 / 24",
	}

	seen := make(map[string]bool)
	for _, sd := range GenerationSections() {
		for _, fd := range sd.Fields {
			if seen[fd.ID] {
				t.Errorf("duplicate field id %q", fd.ID)
			}
			seen[fd.ID] = true

			if w, ok := want[fd.ID]; ok {
				if got := FieldText(fd, s); got != w {
					t.Errorf("field %q = %q, want %q", fd.ID, got, w)
				}
			}
		}
	}
	for id := range want {
		if !seen[id] {
			t.Errorf("field %q missing", id)
		}
	}
}

func TestPipeShareBar(t *testing.T) {
	for _, sd := range GenerationSections() {
		for _, fd := range sd.Fields {
			if fd.ID != "pipe_share" {
				continue
			}
			if got := fd.Getter(telemetry.GenerationStats{Birds: 60, PipeDeaths: 15}); got != 0.25 {
				t.Errorf("pipe share = %v, want 0.25", got)
			}
			if got := fd.Getter(telemetry.GenerationStats{}); got != 0 {
				t.Errorf("pipe share of empty stats = %v, want 0", got)
			}
			return
		}
	}
	t.Fatal("pipe_share field missing")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		value float32
		rng   FieldRange
		want  float32
	}{
		{0.5, DefaultRange(), 0.5},
		{-1, DefaultRange(), 0},
		{3, DefaultRange(), 1},
		{0, FieldRange{Min: -2, Max: 2}, 0.5},
		{1, FieldRange{Min: 1, Max: 1}, 0},
	}
	for _, tt := range tests {
		if got := normalize(tt.value, tt.rng); got != tt.want {
			t.Errorf("normalize(%v, %+v) = %v, want %v", tt.value, tt.rng, got, tt.want)
		}
	}
}
