package bids

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// PhaseEncoding is the closed set of phase-encoding polarities the cohort
// check recognizes on the primary (anterior-posterior, axis j) encoding axis.
// Off-axis values (i, i-, k, k-) and anything unrecognized collapse to
// PEUnknown, which counts toward neither polarity.
type PhaseEncoding int

const (
	PEUnknown PhaseEncoding = iota
	PEForward               // "j", posterior-anterior (PA)
	PEReverse               // "j-", anterior-posterior (AP)
)

// String returns the polarity name.
func (p PhaseEncoding) String() string {
	switch p {
	case PEForward:
		return "forward"
	case PEReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// DirLabel returns the conventional acquisition direction label for the
// polarity ("PA", "AP"), or empty for unknown.
func (p PhaseEncoding) DirLabel() string {
	switch p {
	case PEForward:
		return "PA"
	case PEReverse:
		return "AP"
	default:
		return ""
	}
}

// ParsePhaseEncoding maps a sidecar PhaseEncodingDirection value onto the
// polarity enum. Matching is exact: only the two canonical axis-j values are
// recognized.
func ParsePhaseEncoding(s string) PhaseEncoding {
	switch s {
	case "j":
		return PEForward
	case "j-":
		return PEReverse
	default:
		return PEUnknown
	}
}

// Sidecar holds the two metadata fields the preflight consumes, plus the
// estimated readout fallback some converters emit. Raw values are kept for
// reporting; empty raw means the key was absent.
type Sidecar struct {
	PhaseEncodingRaw string
	PhaseEncoding    PhaseEncoding

	ReadoutRaw       string // TotalReadoutTime as written
	Readout          string // normalized numeric form, "" when absent
	EstimatedReadout string // EstimatedTotalReadoutTime, normalized, "" when absent
}

// HasPhaseEncoding reports whether the sidecar carried a
// PhaseEncodingDirection key at all.
func (s Sidecar) HasPhaseEncoding() bool { return s.PhaseEncodingRaw != "" }

// HasReadout reports whether the sidecar carried a TotalReadoutTime key.
func (s Sidecar) HasReadout() bool { return s.ReadoutRaw != "" }

// ReadSidecar parses a JSON metadata sidecar once and extracts the consumed
// keys. Absent keys stay zero-valued; they are never inferred.
func ReadSidecar(path string) (Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sidecar{}, err
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return Sidecar{}, fmt.Errorf("%s: parse sidecar JSON: %w", path, err)
	}

	var sc Sidecar
	if v, ok := meta["PhaseEncodingDirection"]; ok {
		sc.PhaseEncodingRaw = stringifyMetaValue(v)
		sc.PhaseEncoding = ParsePhaseEncoding(sc.PhaseEncodingRaw)
	}
	if v, ok := meta["TotalReadoutTime"]; ok {
		sc.ReadoutRaw = stringifyMetaValue(v)
		sc.Readout = NormalizeReadout(sc.ReadoutRaw)
	}
	if v, ok := meta["EstimatedTotalReadoutTime"]; ok {
		sc.EstimatedReadout = NormalizeReadout(stringifyMetaValue(v))
	}

	log.Debug().Str("sidecar", path).
		Str("phaseEncoding", sc.PhaseEncodingRaw).
		Str("readout", sc.Readout).
		Msg("parsed sidecar")
	return sc, nil
}

// NormalizeReadout canonicalizes a readout-time value so that textual
// variants of the same number (0.0500 vs 0.05) compare equal. Non-numeric
// text is returned unchanged.
func NormalizeReadout(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// stringifyMetaValue renders a JSON sidecar value as text. Numbers use the
// shortest round-trip form, everything else falls back to fmt.
func stringifyMetaValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
