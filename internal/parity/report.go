package parity

import (
	"fmt"
	"io"
	"time"
)

// maxShownDiffs caps how many discrepancy records the text report prints
// per endpoint. Full records are always present in the JSON report.
const maxShownDiffs = 20

// CheckResult records the outcome of a single endpoint check.
type CheckResult struct {
	Endpoint     Endpoint `json:"endpoint"`
	LibraryCount int      `json:"library_count"`
	CLICount     int      `json:"cli_count"`

	// Discrepancies holds the diff records that were not expected.
	Discrepancies []string `json:"discrepancies,omitempty"`

	// ExpectedExtra counts filtered records for fields the library returns
	// but mongocli omits.
	ExpectedExtra int `json:"expected_extra,omitempty"`

	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report is the top-level output of a parity run.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	ProjectID string        `json:"project_id"`
	Results   []CheckResult `json:"results"`
	AllPassed bool          `json:"all_passed"`
	HasErrors bool          `json:"has_errors"`
}

// WriteText renders the report for terminal consumption.
func (r *Report) WriteText(w io.Writer) {
	for _, res := range r.Results {
		fmt.Fprintf(w, "\n=== Validating %s ===\n", res.Endpoint)

		if res.Error != "" {
			fmt.Fprintf(w, "ERROR: %s\n", res.Error)
			continue
		}

		fmt.Fprintf(w, "Library returned %d %s\n", res.LibraryCount, res.Endpoint)
		fmt.Fprintf(w, "mongocli returned %d %s\n", res.CLICount, res.Endpoint)

		if len(res.Discrepancies) > 0 {
			fmt.Fprintln(w, "Unexpected differences found:")
			for i, rec := range res.Discrepancies {
				if i == maxShownDiffs {
					fmt.Fprintf(w, "  ... and %d more\n", len(res.Discrepancies)-maxShownDiffs)
					break
				}
				fmt.Fprintf(w, "  - %s\n", rec)
			}
			fmt.Fprintf(w, "FAIL: %s\n", res.Endpoint)
			continue
		}

		if res.ExpectedExtra > 0 {
			fmt.Fprintf(w, "  Note: library returns %d additional fields not in mongocli output\n", res.ExpectedExtra)
		}
		fmt.Fprintf(w, "PASS: %s match!\n", res.Endpoint)
	}

	fmt.Fprintln(w, "\n=== Summary ===")
	for _, res := range r.Results {
		status := "PASS"
		switch {
		case res.Error != "":
			status = "ERROR"
		case !res.Passed:
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %s: %s\n", res.Endpoint, status)
	}
}
