package app

import (
	"fmt"
	"io"
)

// Summary reports the outcome of a run for the console
type Summary struct {
	RunID          string
	Samples        int
	Processed      int
	Skipped        int
	Microorganisms int
	AMRMarkers     int
	Charts         []string
	Diagnostics    int
	ResultsDir     string
	ErrorLog       string
	Failed         bool
	FailureKind    string
}

// Write prints the summary. A pointer to the error log is added whenever
// diagnostics were recorded.
func (s *Summary) Write(w io.Writer) {
	if s.Failed {
		if s.FailureKind != "" {
			fmt.Fprintf(w, "Run %s failed (%s). Details in %s\n", s.RunID, s.FailureKind, s.ErrorLog)
		} else {
			fmt.Fprintf(w, "Run %s failed. Details in %s\n", s.RunID, s.ErrorLog)
		}
		return
	}

	fmt.Fprintf(w, "Processed %d of %d samples: %d microorganisms, %d AMR markers, %d charts.\n",
		s.Processed, s.Samples, s.Microorganisms, s.AMRMarkers, len(s.Charts))
	fmt.Fprintf(w, "Results written to %s\n", s.ResultsDir)
	if s.Diagnostics > 0 {
		fmt.Fprintf(w, "%d problem(s) recorded, see %s\n", s.Diagnostics, s.ErrorLog)
	}
}
