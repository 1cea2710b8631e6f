package container

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robert-malhotra/go-usvol/hdf5"
	"github.com/robert-malhotra/go-usvol/table"
	"github.com/robert-malhotra/go-usvol/viewer"
	"github.com/robert-malhotra/go-usvol/volume"
)

// Root attributes written by SaveViewer.
const (
	AttrSaveID  = "save_id"
	AttrCreated = "created"
)

// MeasurementsKey is the top-level entry holding the measurement table.
const MeasurementsKey = "measurements"

// TableWriter is a dataset that knows how to store itself in a container.
type TableWriter interface {
	WriteHDF5(g *hdf5.Group, key string) error
}

// ArrayData is an n-dimensional array stored as one dataset.
type ArrayData interface {
	Dims() []uint64
	Flat() any
}

var (
	_ TableWriter = (*table.Table)(nil)
	_ ArrayData   = (*volume.Array)(nil)
)

// SaveDataset stores ds under name in the container dest, creating the file
// when missing. Tables write themselves; arrays become a compressed dataset
// carrying every metadata entry as a scalar attribute. A name with slashes
// creates the intermediate groups.
func SaveDataset(dest string, ds any, name string, metadata map[string]any, opts ...SaveOption) (err error) {
	o := newSaveOptions(opts)
	diagf("Saving dataset %s to %s", name, dest)

	switch ds.(type) {
	case TableWriter, ArrayData:
	default:
		return fmt.Errorf("dataset %s of type %T: %w", name, ds, ErrUnsupportedDataset)
	}

	f, err := hdf5.OpenAppend(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	dir, base := splitName(name)
	g, err := ensureGroup(f.Root(), dir)
	if err != nil {
		return err
	}
	switch v := ds.(type) {
	case TableWriter:
		return v.WriteHDF5(g, base)
	case ArrayData:
		return writeArray(g, base, v, metadata, o)
	}
	return nil
}

// SaveAll stores every entry of data in dest in key order. It stops at the
// first failure; entries saved before it stay in the file.
func SaveAll(dest string, data map[string]any, opts ...SaveOption) error {
	diagf("Saving images to %s", dest)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := SaveDataset(dest, data[k], k, nil, opts...); err != nil {
			return err
		}
	}
	diagf("Saving complete")
	return nil
}

// SaveViewer writes every image layer of v named "left.*" or "right.*" to
// a new container dest, followed by the measurement table. It refuses to
// touch an existing file, and removes the file again when a later step
// fails.
func SaveViewer(v viewer.Viewer, measurements *table.Table, dest string, opts ...SaveOption) (err error) {
	o := newSaveOptions(opts)
	diagf("Saving images to %s", dest)

	if o.resultsDir != "" && filepath.Clean(filepath.Dir(dest)) == filepath.Clean(o.resultsDir) {
		if err := os.MkdirAll(o.resultsDir, 0o755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(dest); err == nil {
		return refuse(dest)
	}

	f, err := hdf5.Create(dest, hdf5.WithExclusive())
	if errors.Is(err, fs.ErrExist) {
		return refuse(dest)
	}
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	root := f.Root()
	if err := root.SetAttr(AttrSaveID, uuid.NewString()); err != nil {
		return err
	}
	if err := root.SetAttr(AttrCreated, o.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	groups := make(map[viewer.Side]*hdf5.Group)
	for _, side := range viewer.Sides {
		g, err := root.CreateGroup(string(side))
		if err != nil {
			return err
		}
		groups[side] = g
	}
	for _, l := range v.Layers() {
		if l.Kind != viewer.KindImage {
			diagf("Skipping %s layer %s", l.Kind, l.Name)
			continue
		}
		label, ok := ParseLabel(l.Name)
		if !ok || l.Data == nil {
			diagf("Skipping layer %s", l.Name)
			continue
		}
		diagf("Saving %s", l.Name)
		if err := writeArray(groups[label.Side], label.Role, l.Data, nil, o); err != nil {
			return fmt.Errorf("layer %s: %w", l.Name, err)
		}
	}

	if measurements == nil {
		diagf("No measurements to save")
	} else {
		diagf("Saving measurements dataframe")
		if err := measurements.WriteHDF5(root, MeasurementsKey); err != nil {
			return fmt.Errorf("measurements: %w", err)
		}
	}
	diagf("Saving complete")
	return nil
}

func refuse(dest string) error {
	opsf("Following file already exists: %s", dest)
	return fmt.Errorf("%s: %w", dest, ErrDestinationExists)
}

// writeArray stores a as dataset name of g, compressed as configured.
func writeArray(g *hdf5.Group, name string, a ArrayData, metadata map[string]any, o *saveOptions) error {
	dims := a.Dims()
	opts := []hdf5.DatasetOption{hdf5.WithDims(dims...)}
	if o.compression > 0 && len(dims) > 0 && count(dims) > 0 {
		opts = append(opts, hdf5.WithCompression(o.compression))
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, hdf5.WithAttribute(k, metadata[k]))
	}
	_, err := g.CreateDataset(name, a.Flat(), opts...)
	return err
}

func count(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

func splitName(name string) (dir, base string) {
	name = strings.Trim(name, "/")
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

// ensureGroup opens the group at the slash-separated path dir below g,
// creating missing groups.
func ensureGroup(g *hdf5.Group, dir string) (*hdf5.Group, error) {
	for _, name := range hdf5.SplitPath(dir) {
		ok, err := g.Has(name)
		if err != nil {
			return nil, err
		}
		if ok {
			g, err = g.OpenGroup(name)
		} else {
			g, err = g.CreateGroup(name)
		}
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}
