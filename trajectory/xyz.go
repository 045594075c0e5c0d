// Package trajectory writes the solver's output artifacts: the XYZ
// trajectory dump, per-cycle run statistics (gocarina/gocsv, following
// pthm-soup/telemetry's OutputManager pattern), and a bounded debug
// trace of recently executed reactions (grounded on
// original_source/src/debugger/bits/debugger_class.cpp, simplified to
// a ring buffer).
package trajectory

import (
	"bufio"
	"fmt"
	"io"

	"github.com/joebradly/kMC/lattice"
)

// WriteXYZ writes one frame of the lattice's occupied sites in XYZ
// format (spec.md §6): a first line giving the count of active-or-
// surface sites, then one "STATE x y z nNeighbors0" line per site.
// Solution sites with no occupancy are omitted, matching the original's
// intent though not its literal "always C" bug in
// original_source/src/libs/kmcsolver.cpp dumpXYZ.
func WriteXYZ(w io.Writer, lat *lattice.Lattice) error {
	bw := bufio.NewWriter(w)

	count := 0
	lat.ForEachSite(func(_ int, s *lattice.Site) {
		if s.Active || s.State != lattice.Solution {
			count++
		}
	})

	if _, err := fmt.Fprintln(bw, count); err != nil {
		return fmt.Errorf("trajectory: writing site count: %w", err)
	}

	var writeErr error
	lat.ForEachSite(func(_ int, s *lattice.Site) {
		if writeErr != nil {
			return
		}
		if !s.Active && s.State == lattice.Solution {
			return
		}
		n0 := 0
		if len(s.NNeighbors) > 0 {
			n0 = s.NNeighbors[0]
		}
		_, writeErr = fmt.Fprintf(bw, "%s %d %d %d %d\n", s.State.ShortCode(), s.X, s.Y, s.Z, n0)
	})
	if writeErr != nil {
		return fmt.Errorf("trajectory: writing site record: %w", writeErr)
	}

	return bw.Flush()
}
