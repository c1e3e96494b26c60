// Package nifti reads NIfTI-1 headers. Only the fixed 348-byte header is
// parsed; voxel data is never loaded, which keeps header inspection cheap
// even for multi-gigabyte 4D volumes.
package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// HeaderSize is the fixed size of a NIfTI-1 header in bytes.
const HeaderSize = 348

// Header is the on-disk NIfTI-1 header layout. Field sizes follow the
// reference definition in nifti1.h (int -> int32, short -> int16,
// float -> float32, char -> byte).
type Header struct {
	SizeOfHdr    int32
	DataTypeName [10]byte // unused historical field
	DBName       [18]byte // unused historical field
	Extents      int32    // unused historical field
	SessionError int16    // unused historical field
	Regular      byte     // unused historical field
	DimInfo      byte

	Dim        [8]int16 // dim[0] = number of dimensions, dim[4] = volumes
	IntentP1   float32
	IntentP2   float32
	IntentP3   float32
	IntentCode int16
	DataType   int16
	BitPix     int16
	SliceStart int16
	PixDim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	SliceEnd   int16
	SliceCode  byte
	XYZTUnits  byte
	CalMax     float32
	CalMin     float32
	SliceDur   float32
	TOffset    float32
	GLMax      int32 // unused historical field
	GLMin      int32 // unused historical field

	Descrip [80]byte
	AuxFile [24]byte

	QFormCode int16
	SFormCode int16

	QuaternB float32
	QuaternC float32
	QuaternD float32
	QOffsetX float32
	QOffsetY float32
	QOffsetZ float32

	SRowX [4]float32
	SRowY [4]float32
	SRowZ [4]float32

	IntentName [16]byte

	Magic [4]byte // "n+1\x00" (single file) or "ni1\x00" (header + .img pair)
}

// NumVolumes returns the size of the 4th (time/volume) dimension. A 3D
// image counts as a single volume.
func (h Header) NumVolumes() int {
	if h.Dim[0] < 4 {
		return 1
	}
	if h.Dim[4] < 1 {
		return 1
	}
	return int(h.Dim[4])
}

// validMagic reports whether the header magic is one of the two NIfTI-1
// variants.
func validMagic(m [4]byte) bool {
	return m == [4]byte{'n', '+', '1', 0} || m == [4]byte{'n', 'i', '1', 0}
}

// dimPlausible is the byte-order heuristic from the reference
// implementation: dim[0] must land in [1, 7] when read with the file's
// native order.
func dimPlausible(d int16) bool {
	return d >= 1 && d <= 7
}

// ReadHeader parses a NIfTI-1 header from r. Byte order is inferred from
// dim[0]; little endian is tried first.
func ReadHeader(r io.Reader) (Header, error) {
	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("read nifti header: %w", err)
	}

	var h Header
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if _, err := binary.Decode(raw, order, &h); err != nil {
			return Header{}, fmt.Errorf("decode nifti header: %w", err)
		}
		if dimPlausible(h.Dim[0]) {
			break
		}
	}
	if !dimPlausible(h.Dim[0]) {
		return Header{}, fmt.Errorf("cannot infer byte order: dim[0]=%d not in [1, 7]", h.Dim[0])
	}
	if h.SizeOfHdr != HeaderSize {
		return Header{}, fmt.Errorf("invalid header size %d, want %d", h.SizeOfHdr, HeaderSize)
	}
	if !validMagic(h.Magic) {
		return Header{}, fmt.Errorf("invalid magic %q, not a NIfTI-1 file", strings.TrimRight(string(h.Magic[:]), "\x00"))
	}
	return h, nil
}

// Open reads the header of a .nii or .nii.gz file.
func Open(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Header{}, fmt.Errorf("open gzip stream %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return ReadHeader(r)
}
