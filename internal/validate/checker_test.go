package validate

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrsinham/qsipreflight/internal/bids"
	"github.com/mrsinham/qsipreflight/internal/nifti"
)

// writeFixtureFile writes one fixture file, creating parent dirs.
func writeFixtureFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeNifti writes a minimal 4D NIfTI image with nVols volumes, gzipped
// when the path ends in .gz.
func writeNifti(t *testing.T, path string, nVols int) {
	t.Helper()
	h := nifti.Header{
		SizeOfHdr: nifti.HeaderSize,
		Dim:       [8]int16{4, 8, 8, 4, int16(nVols), 1, 1, 1},
		DataType:  4,
		BitPix:    16,
		VoxOffset: 352,
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		t.Fatalf("encode header: %v", err)
	}

	raw := buf.Bytes()
	if strings.HasSuffix(path, ".gz") {
		var gzBuf bytes.Buffer
		gw := gzip.NewWriter(&gzBuf)
		if _, err := gw.Write(raw); err != nil {
			t.Fatalf("gzip header: %v", err)
		}
		if err := gw.Close(); err != nil {
			t.Fatalf("close gzip: %v", err)
		}
		raw = gzBuf.Bytes()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// bvecMatrix builds a 3×n direction table.
func bvecMatrix(n int) string {
	row := strings.TrimSpace(strings.Repeat("0 ", n))
	return fmt.Sprintf("%s\n%s\n%s\n", row, row, row)
}

// writeAcquisition lays down a full consistent acquisition and returns it.
func writeAcquisition(t *testing.T, dir, name string, nVols int, sidecarJSON string) bids.Acquisition {
	t.Helper()
	base := filepath.Join(dir, name)
	writeNifti(t, base+".nii.gz", nVols)

	bvals := make([]string, nVols)
	for i := range bvals {
		bvals[i] = "1000"
	}
	bvals[0] = "0"
	writeFixtureFile(t, base+".bval", strings.Join(bvals, " ")+"\n")
	writeFixtureFile(t, base+".bvec", bvecMatrix(nVols))
	writeFixtureFile(t, base+".json", sidecarJSON)

	info, err := os.Stat(base + ".nii.gz")
	if err != nil {
		t.Fatalf("stat image: %v", err)
	}
	return bids.Acquisition{ImagePath: base + ".nii.gz", BasePath: base, ImageSize: info.Size()}
}

func TestCheckAcquisition_Consistent(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dir-AP_dwi", 5,
		`{"PhaseEncodingDirection": "j-", "TotalReadoutTime": 0.05}`)

	res := CheckAcquisition(acq, CheckOptions{})

	if res.MissingAny() {
		t.Errorf("unexpected missing files: %v", res.MissingFiles)
	}
	if len(res.Anomalies) != 0 {
		t.Errorf("unexpected anomalies: %v", res.Anomalies)
	}
	if res.ImageVolumes != 5 || res.BvalVolumes != 5 || res.BvecVolumes != 5 {
		t.Errorf("volume counts = %d/%d/%d, want 5/5/5", res.ImageVolumes, res.BvalVolumes, res.BvecVolumes)
	}
	if res.VolumeMismatch {
		t.Error("unexpected volume mismatch")
	}
	if !res.BZeroChecked || res.BZeroCount != 1 {
		t.Errorf("b0 = %d (checked %v), want 1", res.BZeroCount, res.BZeroChecked)
	}
	if !res.SidecarRead || res.Sidecar.PhaseEncoding != bids.PEReverse {
		t.Errorf("sidecar read %v, phase encoding %v", res.SidecarRead, res.Sidecar.PhaseEncoding)
	}
}

func TestCheckAcquisition_MissingBvecSkipsCrossCheckOnly(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 4, `{"PhaseEncodingDirection": "j"}`)
	if err := os.Remove(acq.BvecPath()); err != nil {
		t.Fatalf("remove bvec: %v", err)
	}

	res := CheckAcquisition(acq, CheckOptions{})

	if !res.MissingAny() {
		t.Fatal("missing-file flag should be set")
	}
	if len(res.MissingFiles) != 1 || res.MissingFiles[0] != acq.BvecPath() {
		t.Errorf("missing files = %v, want only the bvec", res.MissingFiles)
	}
	// The remaining checks still ran.
	if res.BvecVolumes != 0 {
		t.Errorf("bvec volumes = %d, want 0 for absent table", res.BvecVolumes)
	}
	if res.VolumeMismatch {
		t.Error("two matching counts should not be a mismatch")
	}
	if !res.BZeroChecked {
		t.Error("b0 check should still run")
	}
	if !res.SidecarRead {
		t.Error("metadata extraction should still run")
	}
}

func TestCheckAcquisition_VolumeMismatch(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 5, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "0 1000 1000 1000\n") // 4 entries vs 5 volumes

	res := CheckAcquisition(acq, CheckOptions{})

	if !res.VolumeMismatch {
		t.Error("expected volume mismatch")
	}
	if res.BvalVolumes != 4 {
		t.Errorf("bval volumes = %d, want 4", res.BvalVolumes)
	}
}

func TestCheckAcquisition_MalformedBval(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 3, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "0 abc 1000\n")

	res := CheckAcquisition(acq, CheckOptions{})

	if len(res.Anomalies) == 0 {
		t.Fatal("expected an anomaly for the malformed bval")
	}
	if res.BZeroChecked {
		t.Error("b0 check cannot run on a malformed table")
	}
	// Image and bvec counts are still derived.
	if res.ImageVolumes != 3 || res.BvecVolumes != 3 {
		t.Errorf("counts = %d/%d, want 3/3", res.ImageVolumes, res.BvecVolumes)
	}
}

func TestCheckAcquisition_NoBZero(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 3, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "1000 1000 2000\n")

	res := CheckAcquisition(acq, CheckOptions{})

	if !res.BZeroChecked {
		t.Fatal("b0 check should have run")
	}
	if res.BZeroCount != 0 {
		t.Errorf("b0 count = %d, want 0", res.BZeroCount)
	}
}

func TestCheckAcquisition_BZeroThreshold(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 5, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "0 0 1000 1000 2000\n")

	res := CheckAcquisition(acq, CheckOptions{})
	if res.BZeroCount != 2 {
		t.Errorf("b0 count = %d, want 2 at default threshold", res.BZeroCount)
	}

	res = CheckAcquisition(acq, CheckOptions{BZeroThreshold: 1500})
	if res.BZeroCount != 4 {
		t.Errorf("b0 count = %d, want 4 at threshold 1500", res.BZeroCount)
	}
}

func TestCheckAcquisition_SkipVolumeCount(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 5, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "0 1000\n") // would mismatch

	res := CheckAcquisition(acq, CheckOptions{Skip: Skips{CheckVolumeCount}})

	if res.VolumeMismatch {
		t.Error("skipped check must not flag a mismatch")
	}
	if res.ImageVolumes != 0 {
		t.Error("image header should not be read when the check is skipped")
	}
	// Existence checks and the b0 check still run.
	if res.MissingAny() {
		t.Errorf("unexpected missing files: %v", res.MissingFiles)
	}
	if !res.BZeroChecked {
		t.Error("b0 check should still run")
	}
}

func TestCheckAcquisition_UnreadableImage(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 3, `{}`)
	writeFixtureFile(t, acq.ImagePath, "not a nifti file")

	res := CheckAcquisition(acq, CheckOptions{})

	if len(res.Anomalies) == 0 {
		t.Fatal("expected an anomaly for the unreadable image")
	}
	if res.ImageVolumes != 0 {
		t.Errorf("image volumes = %d, want 0", res.ImageVolumes)
	}
	// bval and bvec still agree, so no mismatch.
	if res.VolumeMismatch {
		t.Error("unexpected mismatch")
	}
}

func TestCheckAcquisition_NoCrossCheckWithoutBothTables(t *testing.T) {
	dir := t.TempDir()
	acq := writeAcquisition(t, dir, "sub-01_dwi", 5, `{}`)
	writeFixtureFile(t, acq.BvalPath(), "0 1000\n") // disagrees with the image
	if err := os.Remove(acq.BvecPath()); err != nil {
		t.Fatalf("remove bvec: %v", err)
	}

	res := CheckAcquisition(acq, CheckOptions{})

	if res.VolumeMismatch {
		t.Error("cross-check must not run with a gradient table absent")
	}
	if res.ImageVolumes != 5 || res.BvalVolumes != 2 {
		t.Errorf("counts = %d/%d, want 5/2", res.ImageVolumes, res.BvalVolumes)
	}
}
