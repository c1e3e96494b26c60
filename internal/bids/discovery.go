package bids

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrNoInputData marks the only fatal condition of a preflight run: there is
// nothing to validate. Callers test for it with errors.Is.
var ErrNoInputData = errors.New("no DWI input data")

// Discover enumerates the DWI image files of one subject, in lexicographic
// order. The subject id includes its "sub-" prefix. A missing dwi directory
// and an empty one are both ErrNoInputData.
func Discover(root, subject string) ([]Acquisition, error) {
	dwiDir := filepath.Join(root, subject, "dwi")
	entries, err := os.ReadDir(dwiDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrNoInputData, dwiDir)
		}
		return nil, fmt.Errorf("list %s: %w", dwiDir, err)
	}

	var acqs []Acquisition
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base, ok := stripImageExt(e.Name())
		if !ok {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		acqs = append(acqs, Acquisition{
			ImagePath: filepath.Join(dwiDir, e.Name()),
			BasePath:  filepath.Join(dwiDir, base),
			ImageSize: size,
		})
	}
	if len(acqs) == 0 {
		return nil, fmt.Errorf("%w: no DWI image files in %s", ErrNoInputData, dwiDir)
	}

	// os.ReadDir sorts by file name, so the set is already deterministic.
	log.Debug().Str("dir", dwiDir).Int("acquisitions", len(acqs)).Msg("discovered DWI images")
	return acqs, nil
}
