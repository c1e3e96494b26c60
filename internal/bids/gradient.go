package bids

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultBZeroThreshold is the b-value (s/mm²) at or below which a volume is
// classified as unweighted. Scanners rarely emit exact zeros, so the cutoff
// is well above 0 but far below the lowest diffusion shell in use.
const DefaultBZeroThreshold = 150

// ReadBvals parses a gradient-strength table: whitespace-separated numeric
// values, one per volume, in one line or several. Negative or non-numeric
// entries are errors.
func ReadBvals(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: gradient strength entry %q is not numeric", path, f)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s: negative gradient strength %g", path, v)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// CountB0 counts the unweighted volumes in a gradient-strength series.
func CountB0(vals []float64, threshold float64) int {
	n := 0
	for _, v := range vals {
		if v <= threshold {
			n++
		}
	}
	return n
}

// ReadBvecColumns parses a gradient-direction table and returns its column
// count, which equals the volume count. The table must be a 3×N numeric
// matrix: one row per spatial axis, one column per volume.
func ReadBvecColumns(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if len(rows) != 3 {
		return 0, fmt.Errorf("%s: gradient direction table has %d rows, want 3", path, len(rows))
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return 0, fmt.Errorf("%s: gradient direction row %d has %d columns, row 1 has %d", path, i+1, len(row), cols)
		}
		for _, f := range row {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				return 0, fmt.Errorf("%s: gradient direction entry %q is not numeric", path, f)
			}
		}
	}
	return cols, nil
}
