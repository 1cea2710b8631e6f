package dicom

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-usvol/internal/testutil"
)

// captureOps redirects the ops stream for the duration of the test.
func captureOps(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := opsLogger
	opsLogger = log.New(&buf, "[dicom] ", 0)
	t.Cleanup(func() { opsLogger = prev })
	return &buf
}

func TestLoadDatasetEqualSpacing(t *testing.T) {
	ops := captureOps(t)
	path := testutil.WriteDICOM(t, t.TempDir(), "vol.dcm", testutil.ExplicitLE,
		testutil.Volume(4, 5, 6, testutil.Ramp(120), 0.3, 0.3, 0.3))

	arr, spacing, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, arr.Shape)
	assert.Equal(t, testutil.Ramp(120), arr.Data)
	assert.Equal(t, 0.3, spacing)
	assert.Empty(t, ops.String())
}

func TestLoadDatasetUnequalSpacing(t *testing.T) {
	ops := captureOps(t)
	path := testutil.WriteDICOM(t, t.TempDir(), "vol.dcm", testutil.ExplicitLE,
		testutil.Volume(4, 4, 4, testutil.Ramp(64), 0.2, 0.25, 0.5))

	_, spacing, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, spacing)
	assert.Contains(t, ops.String(), "not equal: 0.2, 0.25, 0.5")
	assert.Contains(t, ops.String(), path)
}

func TestLoadDatasetMissingSpacing(t *testing.T) {
	elems := testutil.Volume(4, 4, 4, testutil.Ramp(64), 1, 1, 1)
	var kept []testutil.Elem
	for _, e := range elems {
		if e.Tag != uint32(TagSpacingBetweenSlices) {
			kept = append(kept, e)
		}
	}
	path := testutil.WriteDICOM(t, t.TempDir(), "vol.dcm", testutil.ExplicitLE, kept)

	_, _, err := LoadDataset(path)
	assert.ErrorIs(t, err, ErrMissingElement)
	assert.Contains(t, err.Error(), "SpacingBetweenSlices")
}

func TestTransferSyntaxes(t *testing.T) {
	for _, uid := range []string{testutil.ImplicitLE, testutil.ExplicitLE, testutil.ExplicitBE, testutil.DeflatedLE} {
		t.Run(uid, func(t *testing.T) {
			pixels := testutil.Ramp(4 * 5 * 6)
			pixels[7] = 0xABCD
			path := testutil.WriteDICOM(t, t.TempDir(), "vol.dcm", uid,
				testutil.Volume(4, 5, 6, pixels, 0.5, 0.5, 0.5))

			ds, err := ParseFile(path)
			require.NoError(t, err)
			assert.Equal(t, uid, ds.Syntax)

			arr, err := ds.PixelArray()
			require.NoError(t, err)
			assert.Equal(t, []int{4, 5, 6}, arr.Shape)
			assert.Equal(t, pixels, arr.Data)

			rows, err := ds.Int(TagRows)
			require.NoError(t, err)
			assert.Equal(t, 5, rows)
			xy, err := ds.Float64s(TagPixelSpacing)
			require.NoError(t, err)
			assert.Equal(t, []float64{0.5, 0.5}, xy)
		})
	}
}

func TestSingleFrameShapes(t *testing.T) {
	elems := []testutil.Elem{
		{Tag: 0x00280002, VR: "US", Value: []uint16{3}},
		{Tag: 0x00280006, VR: "US", Value: []uint16{1}},
		{Tag: 0x00280010, VR: "US", Value: []uint16{1}},
		{Tag: 0x00280011, VR: "US", Value: []uint16{2}},
		{Tag: 0x00280100, VR: "US", Value: []uint16{8}},
		// planar: R R G G B B
		{Tag: 0x7FE00010, VR: "OB", Value: []byte{1, 2, 10, 20, 100, 200}},
	}
	path := testutil.WriteDICOM(t, t.TempDir(), "rgb.dcm", testutil.ExplicitLE, elems)
	ds, err := ParseFile(path)
	require.NoError(t, err)
	arr, err := ds.PixelArray()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, arr.Shape)
	assert.Equal(t, []uint8{1, 10, 100, 2, 20, 200}, arr.Data)
}

func TestSignedPixels(t *testing.T) {
	elems := []testutil.Elem{
		{Tag: 0x00280010, VR: "US", Value: []uint16{2}},
		{Tag: 0x00280011, VR: "US", Value: []uint16{2}},
		{Tag: 0x00280100, VR: "US", Value: []uint16{16}},
		{Tag: 0x00280103, VR: "US", Value: []uint16{1}},
		{Tag: 0x7FE00010, VR: "OW", Value: []int16{-1, 2, -300, 4}},
	}
	path := testutil.WriteDICOM(t, t.TempDir(), "s.dcm", testutil.ImplicitLE, elems)
	ds, err := ParseFile(path)
	require.NoError(t, err)
	arr, err := ds.PixelArray()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, arr.Shape)
	assert.Equal(t, []int16{-1, 2, -300, 4}, arr.Data)
}

func TestCompressedPixelData(t *testing.T) {
	elems := testutil.Volume(4, 4, 4, nil, 1, 1, 1)
	elems[len(elems)-1] = testutil.Elem{Tag: 0x7FE00010, VR: "OB", Value: testutil.Fragments{{}, {0xFF, 0xD8, 0xFF, 0xD9}}}
	path := testutil.WriteDICOM(t, t.TempDir(), "jpeg.dcm", testutil.JPEGLossless, elems)

	ds, err := ParseFile(path)
	require.NoError(t, err)
	e, ok := ds.Element(TagPixelData)
	require.True(t, ok)
	assert.True(t, e.Encapsulated())
	assert.Len(t, e.Fragments, 2)

	_, _, err = LoadDataset(path)
	assert.ErrorIs(t, err, ErrCompressedPixelData)
}

func TestSequences(t *testing.T) {
	item := []testutil.Elem{
		{Tag: 0x00081150, VR: "UI", Value: "1.2.3"},
		{Tag: 0x00081155, VR: "UI", Value: "1.2.3.4.5"},
	}
	for _, undefined := range []bool{false, true} {
		for _, uid := range []string{testutil.ExplicitLE, testutil.ImplicitLE} {
			elems := append(testutil.Volume(4, 4, 4, testutil.Ramp(64), 1, 1, 1),
				testutil.Elem{Tag: 0x00081140, VR: "SQ", Value: testutil.Items{item, item}, Undefined: undefined})
			path := testutil.WriteDICOM(t, t.TempDir(), "seq.dcm", uid, elems)

			ds, err := ParseFile(path)
			require.NoError(t, err, "undefined=%v syntax=%s", undefined, uid)
			seq, ok := ds.Element(NewTag(0x0008, 0x1140))
			require.True(t, ok)
			require.Len(t, seq.Items, 2)
			if uid == testutil.ExplicitLE {
				s, err := seq.Items[1].String(NewTag(0x0008, 0x1155))
				require.NoError(t, err)
				assert.Equal(t, "1.2.3.4.5", s)
			}
			_, err = ds.PixelArray()
			assert.NoError(t, err, "elements after the sequence are read")
		}
	}
}

func TestCharacterSet(t *testing.T) {
	elems := []testutil.Elem{
		{Tag: 0x00080005, VR: "CS", Value: "ISO_IR 100"},
		{Tag: 0x00100010, VR: "PN", Value: string([]byte{'M', 0xFC, 'l', 'l', 'e', 'r', '^', 'J'})},
	}
	path := testutil.WriteDICOM(t, t.TempDir(), "cs.dcm", testutil.ExplicitLE, elems)
	ds, err := ParseFile(path)
	require.NoError(t, err)
	name, err := ds.String(TagPatientName)
	require.NoError(t, err)
	assert.Equal(t, "Müller^J", name)
}

func TestNotDICOM(t *testing.T) {
	_, err := Parse(bytes.NewReader(make([]byte, 200)))
	assert.ErrorIs(t, err, ErrNotDICOM)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.dcm"))
	assert.Error(t, err)
}

func TestTruncated(t *testing.T) {
	b := testutil.Encode(testutil.ExplicitLE, testutil.Volume(4, 4, 4, testutil.Ramp(64), 1, 1, 1))
	_, err := Parse(bytes.NewReader(b[:len(b)-10]))
	assert.Error(t, err)
}

func TestPixelDimensionsValidated(t *testing.T) {
	tests := []struct {
		name  string
		tag   uint32
		value any
		vr    string
	}{
		{"negative frames", 0x00280008, "-1", "IS"},
		{"zero rows", 0x00280010, []uint16{0}, "US"},
		{"huge frames", 0x00280008, "2147483647", "IS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elems := testutil.Volume(4, 5, 6, testutil.Ramp(120), 1, 1, 1)
			for i := range elems {
				if elems[i].Tag == tt.tag {
					elems[i] = testutil.Elem{Tag: tt.tag, VR: tt.vr, Value: tt.value}
				}
			}
			path := testutil.WriteDICOM(t, t.TempDir(), "bad.dcm", testutil.ExplicitLE, elems)
			var err error
			require.NotPanics(t, func() { _, _, err = LoadDataset(path) })
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "PixelSpacing (0028,0030)", TagPixelSpacing.String())
	assert.Equal(t, "(0009,0010)", NewTag(0x0009, 0x0010).String())
}
