package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeHeader builds a minimal valid 4D header with n volumes.
func makeHeader(nVols int16) Header {
	h := Header{
		SizeOfHdr: HeaderSize,
		Dim:       [8]int16{4, 96, 96, 60, nVols, 1, 1, 1},
		DataType:  4, // int16 voxels
		BitPix:    16,
		VoxOffset: 352,
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	return h
}

func encodeHeader(t *testing.T, h Header, order binary.ByteOrder) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, order, &h))
	require.Equal(t, HeaderSize, buf.Len(), "header layout must be exactly %d bytes", HeaderSize)
	return buf.Bytes()
}

func TestReadHeader_LittleEndian(t *testing.T) {
	raw := encodeHeader(t, makeHeader(65), binary.LittleEndian)

	h, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 65, h.NumVolumes())
}

func TestReadHeader_BigEndian(t *testing.T) {
	raw := encodeHeader(t, makeHeader(12), binary.BigEndian)

	h, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 12, h.NumVolumes())
}

func TestReadHeader_HeaderOnlyMagic(t *testing.T) {
	hdr := makeHeader(7)
	hdr.Magic = [4]byte{'n', 'i', '1', 0}
	raw := encodeHeader(t, hdr, binary.LittleEndian)

	h, err := ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 7, h.NumVolumes())
}

func TestReadHeader_BadMagic(t *testing.T) {
	hdr := makeHeader(10)
	hdr.Magic = [4]byte{'x', 'x', 'x', 0}
	raw := encodeHeader(t, hdr, binary.LittleEndian)

	_, err := ReadHeader(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "invalid magic")
}

func TestReadHeader_Truncated(t *testing.T) {
	raw := encodeHeader(t, makeHeader(10), binary.LittleEndian)

	_, err := ReadHeader(bytes.NewReader(raw[:100]))
	assert.Error(t, err)
}

func TestReadHeader_BadDim0(t *testing.T) {
	hdr := makeHeader(10)
	hdr.Dim[0] = 0
	raw := encodeHeader(t, hdr, binary.LittleEndian)

	_, err := ReadHeader(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "byte order")
}

func TestNumVolumes_3D(t *testing.T) {
	h := makeHeader(1)
	h.Dim = [8]int16{3, 256, 256, 180, 0, 0, 0, 0}
	assert.Equal(t, 1, h.NumVolumes())
}

func TestOpen_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	raw := encodeHeader(t, makeHeader(33), binary.LittleEndian)

	plain := filepath.Join(dir, "vol.nii")
	require.NoError(t, os.WriteFile(plain, raw, 0o644))

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err := gw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	packed := filepath.Join(dir, "vol.nii.gz")
	require.NoError(t, os.WriteFile(packed, gzBuf.Bytes(), 0o644))

	for _, path := range []string{plain, packed} {
		h, err := Open(path)
		require.NoError(t, err, path)
		assert.Equal(t, 33, h.NumVolumes(), path)
	}
}

func TestOpen_NotGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nii.gz")
	require.NoError(t, os.WriteFile(path, []byte("not a gzip stream"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}
