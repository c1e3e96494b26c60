// Package bids locates DWI acquisitions inside a BIDS subject directory and
// parses their companion files: the JSON sidecar, the gradient-strength table
// (.bval) and the gradient-direction table (.bvec).
package bids

import (
	"path/filepath"
	"strings"
)

// Acquisition is one DWI run, identified by its image file. Companion paths
// are derived from the image base name, whether or not the files exist.
type Acquisition struct {
	ImagePath string
	BasePath  string // image path minus .nii / .nii.gz
	ImageSize int64  // bytes, 0 when unknown
}

// Name returns the acquisition base name without directory, e.g.
// "sub-257032_acq-b2000_dir-AP_dwi".
func (a Acquisition) Name() string {
	return filepath.Base(a.BasePath)
}

// SidecarPath returns the path of the JSON metadata sidecar.
func (a Acquisition) SidecarPath() string {
	return a.BasePath + ".json"
}

// BvalPath returns the path of the gradient-strength table.
func (a Acquisition) BvalPath() string {
	return a.BasePath + ".bval"
}

// BvecPath returns the path of the gradient-direction table.
func (a Acquisition) BvecPath() string {
	return a.BasePath + ".bvec"
}

// stripImageExt removes a volumetric image extension from a file name.
// Returns false for anything that is not a NIfTI image.
func stripImageExt(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, ".nii.gz"):
		return strings.TrimSuffix(name, ".nii.gz"), true
	case strings.HasSuffix(name, ".nii"):
		return strings.TrimSuffix(name, ".nii"), true
	}
	return "", false
}
