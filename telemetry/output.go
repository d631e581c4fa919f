package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flappy/config"
)

// csvLog is an append-only CSV file whose header is written with the first row.
type csvLog struct {
	file          *os.File
	headerWritten bool
}

func createCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{file: f}, nil
}

// append writes records, with the header only on the first call.
func (l *csvLog) append(records any) error {
	if l.headerWritten {
		return gocsv.MarshalWithoutHeaders(records, l.file)
	}
	if err := gocsv.Marshal(records, l.file); err != nil {
		return err
	}
	l.headerWritten = true
	return nil
}

// OutputManager writes a run's generations.csv, perf.csv and config snapshot.
type OutputManager struct {
	dir         string
	generations *csvLog
	perf        *csvLog
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled). A nil manager accepts every call.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	generations, err := createCSVLog(dir, "generations.csv")
	if err != nil {
		return nil, err
	}
	perf, err := createCSVLog(dir, "perf.csv")
	if err != nil {
		generations.file.Close()
		return nil, err
	}

	return &OutputManager{dir: dir, generations: generations, perf: perf}, nil
}

// WriteConfig saves cfg as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	if err := om.generations.append([]GenerationStats{stats}); err != nil {
		return fmt.Errorf("writing generation %d: %w", stats.Generation, err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.append([]PerfRecord{stats.Record(generation)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path, empty when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	err := om.generations.file.Close()
	if perr := om.perf.file.Close(); err == nil {
		err = perr
	}
	return err
}
