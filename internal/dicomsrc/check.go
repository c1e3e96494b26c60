// Package dicomsrc checks a pre-conversion DICOM source tree. The converter
// expects T1w/, DWI/ and topup/ category directories with one series per
// subdirectory; this check reports what is actually there before anyone
// burns an hour on a conversion that cannot succeed.
package dicomsrc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/qsipreflight/internal/bids"
	"github.com/mrsinham/qsipreflight/internal/util"
)

// categories are the source directories the converter consumes, in report
// order.
var categories = []string{"T1w", "DWI", "topup"}

// Options parameterizes a source tree check.
type Options struct {
	Root string

	// MapAP and MapPA are case-insensitive regexes matched against series
	// directory names to guess the phase-encoding direction, the same
	// fallbacks the converter uses.
	MapAP string
	MapPA string

	// ShowTags are extra DICOM tags displayed per series.
	ShowTags []util.TagInfo

	Out io.Writer
}

// Series is what the check learned about one series directory.
type Series struct {
	Name      string
	Instances int
	Modality  string
	Descr     string
	DirLabel  string // "AP", "PA" or ""
	Extra     []string
	ParseErr  error
}

// Check inspects the source tree and writes the report. The only fatal
// condition is a tree with no series directories at all.
func Check(opts Options) error {
	apRe, err := regexp.Compile("(?i)" + opts.MapAP)
	if err != nil {
		return fmt.Errorf("compile AP regex: %w", err)
	}
	paRe, err := regexp.Compile("(?i)" + opts.MapPA)
	if err != nil {
		return fmt.Errorf("compile PA regex: %w", err)
	}

	if _, err := os.Stat(opts.Root); err != nil {
		return fmt.Errorf("%w: source root %s not found", bids.ErrNoInputData, opts.Root)
	}

	fmt.Fprintln(opts.Out, "qsipreflight srccheck")
	fmt.Fprintln(opts.Out, "=====================")
	fmt.Fprintln(opts.Out)
	fmt.Fprintf(opts.Out, "[info] source root %s\n", opts.Root)

	total := 0
	for _, cat := range categories {
		catDir := filepath.Join(opts.Root, cat)
		seriesDirs, err := listSeriesDirs(catDir)
		if err != nil {
			fmt.Fprintf(opts.Out, "[warn] category directory missing: %s\n", catDir)
			continue
		}
		if len(seriesDirs) == 0 {
			fmt.Fprintf(opts.Out, "[warn] %s: no series directories\n", cat)
			continue
		}
		fmt.Fprintf(opts.Out, "\n%s: %d series\n", cat, len(seriesDirs))
		for _, dir := range seriesDirs {
			s := inspectSeries(filepath.Join(catDir, dir), opts.ShowTags)
			s.DirLabel = detectDirFromName(dir, apRe, paRe)
			reportSeries(opts.Out, s)
			total++
		}
	}

	if total == 0 {
		return fmt.Errorf("%w: no DICOM series found under %s", bids.ErrNoInputData, opts.Root)
	}

	fmt.Fprintf(opts.Out, "\n[info] %d series inspected\n", total)
	return nil
}

// listSeriesDirs returns the sorted subdirectory names of a category dir.
func listSeriesDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// inspectSeries counts instances and parses the first one for metadata.
// A series whose first instance does not parse as DICOM is reported, not
// fatal.
func inspectSeries(dir string, showTags []util.TagInfo) Series {
	s := Series{Name: filepath.Base(dir)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.ParseErr = err
		return s
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	s.Instances = len(files)
	if len(files) == 0 {
		s.ParseErr = fmt.Errorf("series has no instances")
		return s
	}

	ds, err := dicom.ParseFile(files[0], nil)
	if err != nil {
		s.ParseErr = fmt.Errorf("parse %s: %w", files[0], err)
		return s
	}
	s.Modality = elementString(&ds, tag.Modality)
	s.Descr = elementString(&ds, tag.SeriesDescription)
	for _, ti := range showTags {
		s.Extra = append(s.Extra, fmt.Sprintf("%s=%s", ti.Name, elementString(&ds, ti.Tag)))
	}

	log.Debug().Str("series", dir).Int("instances", s.Instances).Str("modality", s.Modality).Msg("inspected series")
	return s
}

func reportSeries(w io.Writer, s Series) {
	if s.ParseErr != nil {
		fmt.Fprintf(w, "  [error] %s: %v\n", s.Name, s.ParseErr)
		return
	}
	dir := s.DirLabel
	if dir == "" {
		dir = "unknown"
	}
	fmt.Fprintf(w, "  [ok] %s: %d instances, modality=%s, direction=%s, description=%q\n",
		s.Name, s.Instances, valueOrUnknown(s.Modality), dir, s.Descr)
	for _, extra := range s.Extra {
		fmt.Fprintf(w, "       %s\n", extra)
	}
}

// detectDirFromName guesses AP/PA from a series directory name, AP first,
// mirroring the converter's precedence.
func detectDirFromName(name string, apRe, paRe *regexp.Regexp) string {
	if apRe.MatchString(name) {
		return "AP"
	}
	if paRe.MatchString(name) {
		return "PA"
	}
	return ""
}

// elementString renders a dataset element as plain text, empty when absent.
func elementString(ds *dicom.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return ""
	}
	return strings.Trim(elem.Value.String(), " []")
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
