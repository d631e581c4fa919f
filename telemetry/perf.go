package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one part of a host step.
type Phase int

const (
	PhaseCourse Phase = iota
	PhaseBirds
	PhaseEvolve
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"course", "birds", "evolve", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// stepSample is the timing of one host step.
type stepSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
	simMs  float64
}

// PerfCollector times host steps over a rolling window. Phases are fixed, so
// a sample is a plain array and recording does not allocate.
type PerfCollector struct {
	samples []stepSample
	next    int
	filled  int

	current    stepSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over the last window steps.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{samples: make([]stepSample, window)}
}

// StartStep begins timing a step that advances simulated time by simMs.
func (p *PerfCollector) StartStep(simMs float64) {
	p.current = stepSample{simMs: simMs}
	p.stepStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndStep closes the step and stores it in the window.
func (p *PerfCollector) EndStep() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.current.total = now.Sub(p.stepStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

// RecordFrame marks a rendered frame in the viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the steps in the window.
type PerfStats struct {
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	// Share of step time per phase, in percent
	PhasePct [numPhases]float64

	StepsPerSecond float64
	// Simulated milliseconds per wall-clock millisecond
	Speedup float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phases [numPhases]time.Duration
	var simMs float64
	for i, smp := range p.samples[:p.filled] {
		total += smp.total
		simMs += smp.simMs
		if i == 0 || smp.total < s.MinStep {
			s.MinStep = smp.total
		}
		s.MaxStep = max(s.MaxStep, smp.total)
		for ph, d := range smp.phases {
			phases[ph] += d
		}
	}

	s.AvgStep = total / time.Duration(p.filled)
	if total > 0 {
		for ph, d := range phases {
			s.PhasePct[ph] = float64(d) / float64(total) * 100
		}
		s.StepsPerSecond = float64(p.filled) / total.Seconds()
		s.Speedup = simMs / float64(total.Milliseconds()+1)
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
		slog.Float64("speedup", s.Speedup),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}
	return slog.GroupValue(attrs...)
}

// PerfRecord is one row of perf.csv.
type PerfRecord struct {
	Generation   int     `csv:"generation"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	Speedup      float64 `csv:"speedup"`
	FPS          float64 `csv:"fps"`
	CoursePct    float64 `csv:"course_pct"`
	BirdsPct     float64 `csv:"birds_pct"`
	EvolvePct    float64 `csv:"evolve_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// Record flattens s into a CSV row for generation.
func (s PerfStats) Record(generation int) PerfRecord {
	return PerfRecord{
		Generation:   generation,
		AvgStepUS:    s.AvgStep.Microseconds(),
		MinStepUS:    s.MinStep.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		StepsPerSec:  s.StepsPerSecond,
		Speedup:      s.Speedup,
		FPS:          s.FPS,
		CoursePct:    s.PhasePct[PhaseCourse],
		BirdsPct:     s.PhasePct[PhaseBirds],
		EvolvePct:    s.PhasePct[PhaseEvolve],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
