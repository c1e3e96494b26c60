package validate

import (
	"fmt"
	"os"

	"github.com/mrsinham/qsipreflight/internal/bids"
	"github.com/mrsinham/qsipreflight/internal/nifti"
)

// CheckOptions parameterizes the per-acquisition checks.
type CheckOptions struct {
	// BZeroThreshold classifies unweighted volumes; 0 selects the default.
	BZeroThreshold float64
	// Skip disables whole check categories.
	Skip Skips
}

func (o CheckOptions) threshold() float64 {
	if o.BZeroThreshold > 0 {
		return o.BZeroThreshold
	}
	return bids.DefaultBZeroThreshold
}

// CheckAcquisition runs every check for one acquisition. Checks are
// independent: a failed or skipped one never blocks the rest, and absent
// files are taken as given rather than substituted with defaults.
func CheckAcquisition(acq bids.Acquisition, opts CheckOptions) AcquisitionResult {
	res := AcquisitionResult{Acq: acq}

	haveSidecar := checkExists(&res, acq.SidecarPath())
	haveBval := checkExists(&res, acq.BvalPath())
	haveBvec := checkExists(&res, acq.BvecPath())

	var bvals []float64
	if haveBval && !(opts.Skip.Has(CheckVolumeCount) && opts.Skip.Has(CheckBZero)) {
		var err error
		bvals, err = bids.ReadBvals(acq.BvalPath())
		if err != nil {
			res.Anomalies = append(res.Anomalies, err.Error())
			bvals = nil
		}
	}

	if !opts.Skip.Has(CheckVolumeCount) {
		hdr, err := nifti.Open(acq.ImagePath)
		if err != nil {
			res.Anomalies = append(res.Anomalies, fmt.Sprintf("%s: %v", acq.ImagePath, err))
		} else {
			res.ImageVolumes = hdr.NumVolumes()
		}
		res.BvalVolumes = len(bvals)
		if haveBvec {
			cols, err := bids.ReadBvecColumns(acq.BvecPath())
			if err != nil {
				res.Anomalies = append(res.Anomalies, err.Error())
			} else {
				res.BvecVolumes = cols
			}
		}
		// The cross-check needs both gradient tables; with one absent the
		// remaining counts are reported but not compared.
		if haveBval && haveBvec {
			if counts := res.volumeCounts(); len(counts) > 1 {
				for _, c := range counts[1:] {
					if c != counts[0] {
						res.VolumeMismatch = true
						break
					}
				}
			}
		}
	}

	if !opts.Skip.Has(CheckBZero) && bvals != nil {
		res.BZeroCount = bids.CountB0(bvals, opts.threshold())
		res.BZeroChecked = true
	}

	if !opts.Skip.Has(CheckMetadata) && haveSidecar {
		sc, err := bids.ReadSidecar(acq.SidecarPath())
		if err != nil {
			res.Anomalies = append(res.Anomalies, err.Error())
		} else {
			res.Sidecar = sc
			res.SidecarRead = true
		}
	}

	return res
}

// checkExists records an absent companion file on the result and reports
// whether it is present.
func checkExists(res *AcquisitionResult, path string) bool {
	if _, err := os.Stat(path); err != nil {
		res.MissingFiles = append(res.MissingFiles, path)
		return false
	}
	return true
}
