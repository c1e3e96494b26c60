package validate

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Report line styles. Only the summary verdict block is styled; the
// [prefix] detail lines stay plain so the report diffs cleanly.
var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
)

// Reporter writes the preflight report. All output goes through it so runs
// on unchanged input produce byte-identical text.
type Reporter struct {
	w     io.Writer
	color bool
}

// NewReporter returns a reporter writing to w. color enables styled
// verdict lines.
func NewReporter(w io.Writer, color bool) *Reporter {
	return &Reporter{w: w, color: color}
}

func (r *Reporter) line(prefix, format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Header prints the report banner.
func (r *Reporter) Header() {
	fmt.Fprintln(r.w, "qsipreflight")
	fmt.Fprintln(r.w, "============")
	fmt.Fprintln(r.w)
}

func (r *Reporter) Infof(format string, args ...any)    { r.line("[info]", format, args...) }
func (r *Reporter) Okf(format string, args ...any)      { r.line("[ok]", format, args...) }
func (r *Reporter) Warnf(format string, args ...any)    { r.line("[warn]", format, args...) }
func (r *Reporter) Missingf(format string, args ...any) { r.line("[missing]", format, args...) }
func (r *Reporter) Errorf(format string, args ...any)   { r.line("[error]", format, args...) }

// Section prints a blank line and a section title.
func (r *Reporter) Section(title string) {
	fmt.Fprintf(r.w, "\n%s\n", title)
}

// Verdict prints one summary line, ✓ for pass and ✗ for fail.
func (r *Reporter) Verdict(pass bool, text string) {
	mark, style := "✓", passStyle
	if !pass {
		mark, style = "✗", failStyle
	}
	line := fmt.Sprintf("%s %s", mark, text)
	if r.color {
		line = style.Render(line)
	}
	fmt.Fprintln(r.w, line)
}

// Acquisition reports the outcome of one per-acquisition check block.
func (r *Reporter) Acquisition(res AcquisitionResult, skip Skips) {
	fmt.Fprintf(r.w, "\n%s (%s)\n", res.Acq.Name(), humanize.Bytes(uint64(res.Acq.ImageSize)))

	if res.MissingAny() {
		for _, path := range res.MissingFiles {
			r.Missingf("required companion file: %s", path)
		}
	} else {
		r.Okf("all companion files present")
	}

	for _, a := range res.Anomalies {
		r.Errorf("%s", a)
	}

	if !skip.Has(CheckVolumeCount) {
		r.volumeLine(res)
	}
	if !skip.Has(CheckBZero) && res.BZeroChecked {
		if res.BZeroCount == 0 {
			r.Warnf("no b=0 volume found in %d entries", res.BvalVolumes)
		} else {
			r.Infof("b=0 volumes: %d", res.BZeroCount)
		}
	}
	if !skip.Has(CheckMetadata) {
		r.metadataLines(res)
	}
}

func (r *Reporter) volumeLine(res AcquisitionResult) {
	if len(res.volumeCounts()) == 0 {
		return
	}
	counts := fmt.Sprintf("image=%s bval=%s bvec=%s",
		countOrUnknown(res.ImageVolumes),
		countOrUnknown(res.BvalVolumes),
		countOrUnknown(res.BvecVolumes))
	if res.VolumeMismatch {
		r.Warnf("volume count mismatch: %s", counts)
	} else {
		r.Infof("volumes: %s", counts)
	}
}

func (r *Reporter) metadataLines(res AcquisitionResult) {
	if !res.SidecarRead {
		return
	}
	sc := res.Sidecar

	switch {
	case !sc.HasPhaseEncoding():
		r.Warnf("phase encoding: unknown (key absent)")
	case sc.PhaseEncoding.DirLabel() == "":
		r.Warnf("phase encoding: %s (unrecognized polarity)", sc.PhaseEncodingRaw)
	default:
		r.Infof("phase encoding: %s (%s, %s)", sc.PhaseEncodingRaw, sc.PhaseEncoding.DirLabel(), sc.PhaseEncoding)
	}

	switch {
	case sc.HasReadout():
		r.Infof("total readout time: %s", sc.Readout)
	case sc.EstimatedReadout != "":
		r.Warnf("total readout time: unknown; EstimatedTotalReadoutTime=%s present, promote it before processing", sc.EstimatedReadout)
	default:
		r.Warnf("total readout time: unknown (key absent)")
	}
}

// Cohort reports the cross-acquisition checks. With the metadata check
// skipped there is nothing cross-acquisition to say.
func (r *Reporter) Cohort(c CohortResult, skip Skips) {
	if skip.Has(CheckMetadata) {
		return
	}
	r.Section("Cohort checks:")
	if c.PolarityPairPresent() {
		r.Okf("phase-encoding pair present: %d forward (PA) / %d reverse (AP)", c.ForwardCount, c.ReverseCount)
	} else {
		if c.ForwardCount == 0 {
			r.Warnf("no forward-polarity (PA) acquisition; distortion correction cannot run")
		}
		if c.ReverseCount == 0 {
			r.Warnf("no reverse-polarity (AP) acquisition; distortion correction cannot run")
		}
	}

	switch {
	case len(c.ReadoutValues) == 0:
		r.Warnf("no total readout time found in any sidecar")
	case c.ReadoutUniform():
		r.Okf("total readout time uniform: %s", c.ReadoutValues[0])
	default:
		r.Warnf("inconsistent total readout times: %s", strings.Join(c.ReadoutValues, ", "))
	}
}

// Summary prints the terminal verdict block.
func (r *Reporter) Summary(c CohortResult, skip Skips) {
	r.Section("Summary:")
	if c.MissingFile {
		r.Verdict(false, "missing required companion files detected")
	} else {
		r.Verdict(true, "all required companion files present")
	}
	if !skip.Has(CheckMetadata) {
		r.Verdict(c.ReadoutUniform(), "metadata consistency checked (PhaseEncodingDirection, TotalReadoutTime)")
		r.Verdict(c.PolarityPairPresent(), "phase-encoding pair coverage checked (AP/PA)")
	}
}

func countOrUnknown(n int) string {
	if n == 0 {
		return "?"
	}
	return fmt.Sprintf("%d", n)
}
