package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-usvol/config"
	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/internal/testutil"
	"github.com/robert-malhotra/go-usvol/table"
	"github.com/robert-malhotra/go-usvol/viewer"
	"github.com/robert-malhotra/go-usvol/volume"
)

func TestConvertThenLoad(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDICOM(t, dir, "scan.dcm", testutil.ExplicitLE,
		testutil.Volume(4, 5, 6, testutil.Ramp(120), 0.3, 0.3, 0.3))
	out := filepath.Join(dir, "scan.hdf5")

	require.NoError(t, convert(in, out, config.Default()))
	assert.ErrorIs(t, convert(in, out, config.Default()), container.ErrDestinationExists)

	var buf bytes.Buffer
	require.NoError(t, load(&buf, out))
	assert.Contains(t, buf.String(), "format:  hdf5:raw")
	assert.Contains(t, buf.String(), "shape:   [4 5 6]")
	assert.Contains(t, buf.String(), "dtype:   uint16")
	assert.Contains(t, buf.String(), "spacing: 0.3")

	buf.Reset()
	require.NoError(t, inspect(&buf, out))
	assert.Contains(t, buf.String(), `Dataset "raw": uint16 [4 5 6], chunked [deflate]`)
	assert.Contains(t, buf.String(), "@pixel_spacing = 0.3")
}

func TestLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.h5")
	a, err := volume.New([]int{4, 4, 4}, make([]int8, 64))
	require.NoError(t, err)
	var s viewer.Stack
	s.Add("left.processed_follicle_segmentation", a)
	require.NoError(t, container.SaveViewer(&s, nil, path))

	var buf bytes.Buffer
	require.NoError(t, layers(&buf, path))
	assert.Contains(t, buf.String(), "opacity=0.50 visible=true colormap=inferno")

	assert.Error(t, layers(&buf, "notes.txt"))
}

func TestSaveToResultsFile(t *testing.T) {
	dir := t.TempDir()
	left := testutil.WriteDICOM(t, dir, "left.dcm", testutil.ExplicitLE,
		testutil.Volume(4, 5, 6, testutil.Ramp(120), 0.3, 0.3, 0.3))
	right := filepath.Join(dir, "right.hdf5")
	require.NoError(t, convert(left, right, config.Default()))

	cfg := config.Default()
	cfg.ResultsDir = filepath.Join(dir, "follicle_tracker", "results")
	cfg.ResultsFile = "session.hdf5"
	cfg.Compression = 5

	var buf bytes.Buffer
	require.NoError(t, save(&buf, []string{"left.cropped_raw=" + left, "right.cropped_raw=" + right}, cfg))
	dest := filepath.Join(cfg.ResultsDir, "session.hdf5")
	assert.Contains(t, buf.String(), "saved 2 layers to "+dest)

	err := save(&buf, []string{"left.cropped_raw=" + left}, cfg)
	assert.ErrorIs(t, err, container.ErrDestinationExists)

	buf.Reset()
	require.NoError(t, layers(&buf, dest))
	assert.Contains(t, buf.String(), "left.cropped_raw")
	assert.Contains(t, buf.String(), "opacity=0.60 visible=true")
	assert.Contains(t, buf.String(), "right.cropped_raw")

	buf.Reset()
	require.NoError(t, inspect(&buf, dest))
	assert.Contains(t, buf.String(), "[deflate] level 5")
}

func TestSaveRejectsBadArguments(t *testing.T) {
	cfg := config.Default()
	cfg.ResultsDir = t.TempDir()
	var buf bytes.Buffer
	assert.Error(t, save(&buf, []string{"left.raw"}, cfg))
	assert.Error(t, save(&buf, []string{"middle.raw=x.dcm"}, cfg))
	assert.NoFileExists(t, cfg.ResultsPath())
}

func TestInspectTableMeans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.h5")
	tb, err := table.New([]string{"id", "diameter"}, [][]float64{{1, 10}, {2, 6}})
	require.NoError(t, err)
	var s viewer.Stack
	require.NoError(t, container.SaveViewer(&s, tb, path))

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, path))
	assert.Contains(t, buf.String(), "mean(diameter) = 8")
	assert.Contains(t, buf.String(), "mean(id) = 1.5")
}

func TestSamples(t *testing.T) {
	cfg := config.Default()
	cfg.SampleDataDir = "/data/samples"
	var buf bytes.Buffer
	samples(&buf, cfg)
	assert.Contains(t, buf.String(), "/data/samples/A01_130417_raw.hdf5")
	assert.Contains(t, buf.String(), "Follicle_Ultrasounds_All")
}
