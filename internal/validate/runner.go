package validate

import (
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mrsinham/qsipreflight/internal/bids"
)

// Options contains all parameters for one preflight run.
type Options struct {
	Subject  string
	DataRoot string

	BZeroThreshold float64
	// Workers is the number of parallel per-acquisition checks.
	// 0 or 1 runs them sequentially.
	Workers int
	Skip    Skips

	Color bool
	Out   io.Writer
}

// Run executes the full preflight for one subject: discovery, per-acquisition
// checks, cohort checks, summary. The returned error is non-nil only for the
// fatal discovery failure (bids.ErrNoInputData) or an unreadable directory;
// every other finding is advisory and lands in the report.
func Run(opts Options) error {
	rep := NewReporter(opts.Out, opts.Color)

	acqs, err := bids.Discover(opts.DataRoot, opts.Subject)
	if err != nil {
		return err
	}

	rep.Header()
	rep.Infof("subject %s", opts.Subject)
	rep.Infof("data root %s", opts.DataRoot)
	rep.Infof("found %d DWI acquisitions", len(acqs))

	checkOpts := CheckOptions{BZeroThreshold: opts.BZeroThreshold, Skip: opts.Skip}
	results := checkAll(acqs, checkOpts, opts.Workers)

	for _, res := range results {
		rep.Acquisition(res, opts.Skip)
	}

	cohort := CheckCohort(results)
	rep.Cohort(cohort, opts.Skip)
	rep.Summary(cohort, opts.Skip)
	return nil
}

// checkAll runs the per-acquisition checks, fanning out over a bounded
// worker pool when asked to. Acquisitions are mutually independent, so the
// only coordination needed is putting results back in discovery order to
// keep the report deterministic.
func checkAll(acqs []bids.Acquisition, opts CheckOptions, workers int) []AcquisitionResult {
	results := make([]AcquisitionResult, len(acqs))

	if workers <= 1 {
		for i, acq := range acqs {
			results[i] = CheckAcquisition(acq, opts)
		}
		return results
	}

	if workers > len(acqs) {
		workers = len(acqs)
	}
	log.Debug().Int("workers", workers).Int("acquisitions", len(acqs)).Msg("parallel acquisition checks")

	taskChan := make(chan int, len(acqs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskChan {
				// Each worker writes a disjoint slice element; no
				// further merging is needed.
				results[i] = CheckAcquisition(acqs[i], opts)
			}
		}()
	}
	for i := range acqs {
		taskChan <- i
	}
	close(taskChan)
	wg.Wait()

	return results
}
