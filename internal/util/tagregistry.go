// Package util provides small helpers shared by the qsipreflight commands.
package util

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagInfo pairs a display name with its DICOM tag.
type TagInfo struct {
	Name string
	Tag  tag.Tag
}

// tagRegistry maps lowercase tag names to their TagInfo. The set is limited
// to series-level MR tags that matter when triaging a DWI source tree.
var tagRegistry = map[string]TagInfo{
	"modality":              {Name: "Modality", Tag: tag.Modality},
	"seriesdescription":     {Name: "SeriesDescription", Tag: tag.SeriesDescription},
	"protocolname":          {Name: "ProtocolName", Tag: tag.ProtocolName},
	"sequencename":          {Name: "SequenceName", Tag: tag.SequenceName},
	"manufacturer":          {Name: "Manufacturer", Tag: tag.Manufacturer},
	"manufacturermodelname": {Name: "ManufacturerModelName", Tag: tag.ManufacturerModelName},
	"magneticfieldstrength": {Name: "MagneticFieldStrength", Tag: tag.MagneticFieldStrength},
	"echotime":              {Name: "EchoTime", Tag: tag.EchoTime},
	"repetitiontime":        {Name: "RepetitionTime", Tag: tag.RepetitionTime},
	"flipangle":             {Name: "FlipAngle", Tag: tag.FlipAngle},
	"slicethickness":        {Name: "SliceThickness", Tag: tag.SliceThickness},
	"bodypartexamined":      {Name: "BodyPartExamined", Tag: tag.BodyPartExamined},
	"stationname":           {Name: "StationName", Tag: tag.StationName},
	"institutionname":       {Name: "InstitutionName", Tag: tag.InstitutionName},
}

// GetTagByName returns TagInfo for a given tag name.
// The lookup is case-insensitive. If the tag is not found, an error is
// returned with a suggestion for the closest matching tag name (using
// Levenshtein distance).
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// ParseShowTags resolves repeated --show-tag flag values, deduplicating
// while preserving order.
func ParseShowTags(names []string) ([]TagInfo, error) {
	var infos []TagInfo
	seen := make(map[string]bool)
	for _, n := range names {
		info, err := GetTagByName(n)
		if err != nil {
			return nil, err
		}
		if seen[info.Name] {
			continue
		}
		seen[info.Name] = true
		infos = append(infos, info)
	}
	return infos, nil
}

// findClosestTagName finds the closest matching tag name using Levenshtein
// distance. Returns empty string if no close match is found (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance calculates the Levenshtein distance between two
// strings: the minimum number of single-character edits required to change
// one into the other.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
