// Package validate is the preflight engine: per-acquisition checks, cohort
// checks and the textual report.
package validate

import (
	"fmt"
	"strings"
)

// CheckType names a skippable category of per-acquisition checks. Existence
// checks are not skippable; without them the report is meaningless.
type CheckType string

const (
	CheckVolumeCount CheckType = "volume-count"
	CheckBZero       CheckType = "b0"
	CheckMetadata    CheckType = "metadata"
)

// AllCheckTypes returns every skippable check type.
func AllCheckTypes() []CheckType {
	return []CheckType{CheckVolumeCount, CheckBZero, CheckMetadata}
}

// Skips is the set of check types disabled for a run.
type Skips []CheckType

// ParseSkips parses a comma-separated list of check types.
func ParseSkips(input string) (Skips, error) {
	if input == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	result := make(Skips, 0, len(parts))
	valid := make(map[CheckType]bool)
	for _, t := range AllCheckTypes() {
		valid[t] = true
	}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		t := CheckType(p)
		if !valid[t] {
			return nil, fmt.Errorf("unknown check type %q, valid types: %v", p, AllCheckTypes())
		}
		result = append(result, t)
	}
	return result, nil
}

// Has checks whether a check type is in the skip set.
func (s Skips) Has(t CheckType) bool {
	for _, st := range s {
		if st == t {
			return true
		}
	}
	return false
}
