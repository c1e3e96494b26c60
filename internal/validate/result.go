package validate

import (
	"sort"

	"github.com/mrsinham/qsipreflight/internal/bids"
)

// AcquisitionResult is the outcome of every per-acquisition check for one
// DWI run. Each acquisition gets its own result so missing files stay
// attributable; the cohort check merges them afterwards.
type AcquisitionResult struct {
	Acq bids.Acquisition

	// MissingFiles lists absent companion files, in check order.
	MissingFiles []string

	// Anomalies lists recoverable parse failures (malformed tables,
	// unreadable headers, broken JSON). They never abort the run.
	Anomalies []string

	// Volume counts; 0 means the source was absent, malformed or skipped.
	ImageVolumes int
	BvalVolumes  int
	BvecVolumes  int
	// VolumeMismatch is set when at least two available counts disagree.
	VolumeMismatch bool

	// BZeroCount is only meaningful when BZeroChecked is true.
	BZeroCount   int
	BZeroChecked bool

	// Sidecar is only meaningful when SidecarRead is true.
	Sidecar     bids.Sidecar
	SidecarRead bool
}

// MissingAny reports whether any required companion file is absent.
func (r AcquisitionResult) MissingAny() bool {
	return len(r.MissingFiles) > 0
}

// volumeCounts returns the counts that could actually be derived.
func (r AcquisitionResult) volumeCounts() []int {
	var counts []int
	for _, c := range []int{r.ImageVolumes, r.BvalVolumes, r.BvecVolumes} {
		if c > 0 {
			counts = append(counts, c)
		}
	}
	return counts
}

// CohortResult aggregates pass/fail signals across the whole subject.
type CohortResult struct {
	// MissingFile is the merged missing-required-file flag.
	MissingFile bool

	// Polarity coverage on the primary phase-encode axis.
	ForwardCount int // "j" (PA)
	ReverseCount int // "j-" (AP)

	// ReadoutValues is the sorted set of distinct normalized readout times.
	ReadoutValues []string
}

// PolarityPairPresent reports whether both polarities were seen, the
// precondition for distortion correction downstream.
func (c CohortResult) PolarityPairPresent() bool {
	return c.ForwardCount > 0 && c.ReverseCount > 0
}

// ReadoutUniform reports whether at most one distinct readout time was seen.
func (c CohortResult) ReadoutUniform() bool {
	return len(c.ReadoutValues) <= 1
}

// CheckCohort merges per-acquisition results into the cohort verdict.
func CheckCohort(results []AcquisitionResult) CohortResult {
	var c CohortResult
	seen := make(map[string]bool)
	for _, r := range results {
		if r.MissingAny() {
			c.MissingFile = true
		}
		if !r.SidecarRead {
			continue
		}
		switch r.Sidecar.PhaseEncoding {
		case bids.PEForward:
			c.ForwardCount++
		case bids.PEReverse:
			c.ReverseCount++
		}
		if r.Sidecar.HasReadout() && !seen[r.Sidecar.Readout] {
			seen[r.Sidecar.Readout] = true
			c.ReadoutValues = append(c.ReadoutValues, r.Sidecar.Readout)
		}
	}
	sort.Strings(c.ReadoutValues)
	return c
}
