package plugin

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-usvol/config"
	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/internal/testutil"
	"github.com/robert-malhotra/go-usvol/viewer"
	"github.com/robert-malhotra/go-usvol/volume"
)

func funcName(f ReaderFunc) uintptr {
	if f == nil {
		return 0
	}
	return reflect.ValueOf(f).Pointer()
}

func TestGetReader(t *testing.T) {
	tests := []struct {
		path any
		want ReaderFunc
	}{
		{"scan.dcm", ReadDICOMImage},
		{"session.h5", ReadContainerLayers},
		{"session.hdf5", ReadContainerLayers},
		{"scan.png", nil},
		{"scan.dcm.bak", nil},
		{[]string{"a.dcm", "b.dcm"}, nil},
		{42, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, funcName(tt.want), funcName(GetReader(tt.path)), "%v", tt.path)
	}
}

func TestReadDICOMImage(t *testing.T) {
	path := testutil.WriteDICOM(t, t.TempDir(), "A01_130417.dcm", testutil.ExplicitLE,
		testutil.Volume(4, 4, 4, testutil.Ramp(64), 1, 1, 1))

	layers, err := GetReader(path)(path)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, viewer.DefaultMeta("A01_130417"), layers[0].Meta)
	assert.Equal(t, viewer.KindImage, layers[0].Kind)
	assert.Equal(t, []int{4, 4, 4}, layers[0].Data.Shape)
}

func writeSegmented(t *testing.T, path string) {
	t.Helper()
	a, err := volume.New([]int{4, 4, 4}, make([]uint8, 64))
	require.NoError(t, err)
	var s viewer.Stack
	s.Add("left.cropped_raw", a)
	s.Add("left.cropped_ovary_seg", a)
	s.Add("left.processed_follicle_segmentation", a)
	s.Add("right.cropped_raw", a)
	require.NoError(t, container.SaveViewer(&s, nil, path))
}

func metas(layers []viewer.LayerData) []viewer.Meta {
	var out []viewer.Meta
	for _, l := range layers {
		out = append(out, l.Meta)
	}
	return out
}

func TestReadContainerLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xxx_segmented.hdf5")
	writeSegmented(t, path)

	layers, err := GetReader(path)(path)
	require.NoError(t, err)
	want := []viewer.Meta{
		{Name: "left.cropped_raw", Opacity: 0.6, Visible: true},
		{Name: "left.cropped_ovary_seg", Opacity: 0.4, Visible: true},
		{Name: "left.processed_follicle_segmentation", Opacity: 0.5, Visible: true, Colormap: "inferno"},
		{Name: "right.cropped_raw", Opacity: 1, Visible: false},
	}
	if diff := cmp.Diff(want, metas(layers)); diff != "" {
		t.Errorf("layers (-want +got):\n%s", diff)
	}
}

func TestSamples(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SampleDataDir = dir
	cfg.SampleDICOM = testutil.WriteDICOM(t, dir, "MR_small.dcm", testutil.ExplicitLE,
		testutil.Volume(1, 8, 8, testutil.Ramp(64), 1, 1, 1))
	writeSegmented(t, filepath.Join(dir, SegmentedSampleFile))

	samples := Samples(cfg)
	require.Len(t, samples, 3)
	names := []string{samples[0].Name, samples[1].Name, samples[2].Name}
	assert.Equal(t, []string{"Sample Dicom Image", "Follicle_Ultrasounds_Raw", "Follicle_Ultrasounds_All"}, names)

	layers, err := samples[0].Load()
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "left", layers[0].Meta.Name)
	assert.Equal(t, "right", layers[1].Meta.Name)
	assert.Same(t, layers[0].Data, layers[1].Data)
	assert.Equal(t, []int{8, 8}, layers[0].Data.Shape)

	assert.Equal(t, filepath.Join(dir, RawSampleFile), samples[1].Path)
	assert.Nil(t, samples[1].Load)

	layers, err = samples[2].Load()
	require.NoError(t, err)
	assert.Len(t, layers, 4)
	assert.Equal(t, 0.4, layers[1].Meta.Opacity)
}

func TestSamplesCustomPolicy(t *testing.T) {
	dir := t.TempDir()
	writeSegmented(t, filepath.Join(dir, SegmentedSampleFile))
	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("rules:\n  - match: right.*\n    colormap: gray\n"), 0o644))

	cfg := config.Default()
	cfg.SampleDataDir = dir
	cfg.DisplayPolicy = policy
	layers, err := Samples(cfg)[2].Load()
	require.NoError(t, err)
	assert.Equal(t, "gray", layers[3].Meta.Colormap)
	assert.Equal(t, 1.0, layers[0].Meta.Opacity)
}
