package hdf5

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.h5")
	f, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !f.IsWritable() {
		t.Error("created file should be writable")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f2, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()
	if f2.Version() < 2 {
		t.Errorf("superblock version: got %d, want >= 2", f2.Version())
	}
	if f2.IsWritable() {
		t.Error("Open should be read-only")
	}
	members, err := f2.Root().Members()
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("members: got %v, want none", members)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if uint64(st.Size()) != f2.sb.EOFAddress {
		t.Errorf("file size %d does not match EOF address %d", st.Size(), f2.sb.EOFAddress)
	}
}

func TestCreateWithSmallOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.h5")
	f, err := Create(path, WithOffsetSize(4), WithLengthSize(4))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Root().CreateDataset("v", []int32{1, 2, 3}, WithCompression(6)); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	left, err := f.Root().CreateGroup("left")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := left.CreateDataset("raw", []uint16{4, 5}); err != nil {
		t.Fatalf("nested CreateDataset failed: %v", err)
	}
	f.Close()

	f2, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()
	if f2.sb.OffsetSize != 4 || f2.sb.LengthSize != 4 {
		t.Errorf("sizes: got %d/%d", f2.sb.OffsetSize, f2.sb.LengthSize)
	}
	var got []int32
	ds, err := f2.OpenDataset("/v")
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Read(&got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int32{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
	nested, err := f2.OpenDataset("/left/raw")
	if err != nil {
		t.Fatalf("OpenDataset /left/raw: %v", err)
	}
	var raw []uint16
	if err := nested.Read(&raw); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(raw, []uint16{4, 5}) {
		t.Errorf("/left/raw: got %v", raw)
	}
}

func TestCreateExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.h5")
	if err := os.WriteFile(path, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Create(path, WithExclusive())
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("got %v, want fs.ErrExist", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "keep" {
		t.Errorf("existing file modified: %q", b)
	}
}

func TestOpenNotHDF5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.h5")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrNotHDF5) {
		t.Errorf("got %v, want ErrNotHDF5", err)
	}
}

func TestOpenReadWriteAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.h5")
	f, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Root().CreateDataset("first", []int32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f2, err := OpenReadWrite(path)
	if err != nil {
		t.Fatalf("OpenReadWrite failed: %v", err)
	}
	if _, err := f2.Root().CreateDataset("second", []float64{1.5}); err != nil {
		t.Fatalf("CreateDataset after reopen failed: %v", err)
	}
	if err := f2.Close(); err != nil {
		t.Fatal(err)
	}

	f3, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f3.Close()
	members, _ := f3.Root().Members()
	if !reflect.DeepEqual(members, []string{"first", "second"}) {
		t.Errorf("members: got %v", members)
	}
	var first []int32
	ds, _ := f3.OpenDataset("first")
	if err := ds.Read(&first); err != nil || !reflect.DeepEqual(first, []int32{1, 2, 3}) {
		t.Errorf("first: got %v, %v", first, err)
	}
}

func TestOpenAppendCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.h5")
	f, err := OpenAppend(path)
	if err != nil {
		t.Fatalf("OpenAppend failed: %v", err)
	}
	if _, err := f.Root().CreateGroup("left"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = OpenAppend(path)
	if err != nil {
		t.Fatalf("OpenAppend on existing file failed: %v", err)
	}
	if _, err := f.Root().CreateGroup("right"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	members, _ := f.Root().Members()
	if !reflect.DeepEqual(members, []string{"left", "right"}) {
		t.Errorf("members: got %v", members)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.h5")
	f, _ := Create(path)
	f.Close()

	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Root().CreateGroup("g"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("CreateGroup: got %v, want ErrReadOnly", err)
	}
	if err := f.Flush(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Flush: got %v, want ErrReadOnly", err)
	}
}

func TestClosedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.h5")
	f, _ := Create(path)
	root := f.Root()
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := root.Members(); !errors.Is(err, ErrClosed) {
		t.Errorf("Members: got %v, want ErrClosed", err)
	}
	if _, err := root.CreateGroup("g"); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateGroup: got %v, want ErrClosed", err)
	}
}
