package trajectory

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// RunStats is one per-cycle telemetry record (SPEC_FULL.md §4.10),
// following pthm-soup/telemetry's csv-tagged struct + gocsv pattern.
type RunStats struct {
	Cycle            int     `csv:"cycle"`
	SimTime          float64 `csv:"sim_time"`
	KTot             float64 `csv:"k_tot"`
	TotalActiveSites int     `csv:"total_active_sites"`
	TotalEnergy      float64 `csv:"total_energy"`
}

// StatsWriter appends RunStats records to a CSV file, writing the
// header once and plain rows thereafter (pthm-soup/telemetry/output.go
// WriteTelemetry's header-then-append idiom).
type StatsWriter struct {
	file          *os.File
	headerWritten bool
}

// NewStatsWriter creates (or truncates) path and returns a writer ready
// to accept RunStats records.
func NewStatsWriter(path string) (*StatsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trajectory: creating stats file: %w", err)
	}
	return &StatsWriter{file: f}, nil
}

// Write appends one record, writing headers on the first call.
func (w *StatsWriter) Write(stats RunStats) error {
	records := []RunStats{stats}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("trajectory: writing stats header: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("trajectory: writing stats row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *StatsWriter) Close() error {
	return w.file.Close()
}
