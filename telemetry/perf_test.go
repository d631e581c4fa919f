package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep(33)
		pc.StartPhase(PhaseCourse)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseBirds)
		time.Sleep(500 * time.Microsecond)
		pc.EndStep()
	}

	s := pc.Stats()
	if s.AvgStep <= 0 || s.MinStep > s.AvgStep || s.MaxStep < s.AvgStep {
		t.Errorf("step timing min=%v avg=%v max=%v", s.MinStep, s.AvgStep, s.MaxStep)
	}
	if s.PhasePct[PhaseBirds] <= s.PhasePct[PhaseCourse] {
		t.Errorf("birds %.1f%% should exceed course %.1f%%", s.PhasePct[PhaseBirds], s.PhasePct[PhaseCourse])
	}
	if s.PhasePct[PhaseEvolve] != 0 {
		t.Errorf("evolve never ran but has %.1f%%", s.PhasePct[PhaseEvolve])
	}
	if s.StepsPerSecond <= 0 || s.Speedup <= 0 {
		t.Errorf("steps/sec=%v speedup=%v, want positive", s.StepsPerSecond, s.Speedup)
	}
}

func TestPerfCollectorWindowWraps(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.StartStep(10)
		pc.StartPhase(PhaseCourse)
		pc.EndStep()
	}
	if pc.filled != 3 || pc.next != 1 {
		t.Errorf("filled=%d next=%d, want 3 1", pc.filled, pc.next)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgStep != 0 || s.StepsPerSecond != 0 || s.FPS != 0 {
		t.Errorf("empty collector stats = %+v", s)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration = %v, want >= 15ms", s.FrameDuration)
	}
	if s.FPS <= 0 || s.FPS > 70 {
		t.Errorf("fps = %v, want in (0, 70]", s.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCourse, "course"},
		{PhaseTelemetry, "telemetry"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPerfStatsRecord(t *testing.T) {
	var s PerfStats
	s.AvgStep = 250 * time.Microsecond
	s.StepsPerSecond = 4000
	s.PhasePct[PhaseCourse] = 20
	s.PhasePct[PhaseBirds] = 75
	s.PhasePct[PhaseEvolve] = 5

	row := s.Record(12)
	if row.Generation != 12 || row.AvgStepUS != 250 {
		t.Errorf("generation=%d avg=%d, want 12 250", row.Generation, row.AvgStepUS)
	}
	if row.CoursePct != 20 || row.BirdsPct != 75 || row.EvolvePct != 5 || row.TelemetryPct != 0 {
		t.Errorf("phase pcts = %v %v %v %v", row.CoursePct, row.BirdsPct, row.EvolvePct, row.TelemetryPct)
	}
}
