package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theckman/yacspin"

	"github.com/robert-malhotra/go-usvol/config"
	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/loader"
	"github.com/robert-malhotra/go-usvol/plugin"
	"github.com/robert-malhotra/go-usvol/viewer"
)

func load(w io.Writer, path string) error {
	src, err := loader.Resolve(path)
	if err != nil {
		return err
	}
	arr, spacing, err := src.Load()
	if err != nil {
		return err
	}
	lo, hi := arr.Range()
	fmt.Fprintf(w, "%s\n  format:  %s\n  shape:   %v\n  dtype:   %s\n  range:   %v .. %v\n  spacing: %s\n",
		path, src.Format, arr.Shape, arr.DType(), lo, hi, spacing)
	return nil
}

// convert loads in and stores it as the raw dataset of the new container
// out, recording the spacing so load can read it back.
func convert(in, out string, cfg config.Config) error {
	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("%s: %w", out, container.ErrDestinationExists)
	}
	arr, spacing, err := loader.LoadInputImage(in)
	if err != nil {
		return err
	}
	meta := map[string]any{}
	if spacing.Valid {
		meta[container.AttrPixelSpacing] = spacing.Value
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            " ",
		Message:           fmt.Sprintf("compressing %s %v", arr.DType(), arr.Shape),
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopMessage:       out,
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
		StopFailMessage:   "failed",
	})
	if err != nil {
		return err
	}
	if err := spinner.Start(); err != nil {
		return err
	}
	err = container.SaveDataset(out, arr, loader.KeyRaw, meta, container.WithCompression(cfg.Compression))
	if err != nil {
		return errors.Join(err, spinner.StopFail())
	}
	return spinner.Stop()
}

// save loads every side.role=path argument as a layer and writes the layers
// to the configured results file, creating the results directory.
func save(w io.Writer, args []string, cfg config.Config) error {
	var s viewer.Stack
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%q: want side.role=path", arg)
		}
		if _, ok := container.ParseLabel(name); !ok {
			return fmt.Errorf("%q: layer name must be left.<role> or right.<role>", name)
		}
		arr, _, err := loader.LoadInputImage(path)
		if err != nil {
			return err
		}
		s.Add(name, arr)
	}
	dest := cfg.ResultsPath()
	err := container.SaveViewer(&s, nil, dest,
		container.WithResultsDir(config.ExpandHome(cfg.ResultsDir)),
		container.WithCompression(cfg.Compression))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %d layers to %s\n", len(args), dest)
	return nil
}

func layers(w io.Writer, path string) error {
	read := plugin.GetReader(path)
	if read == nil {
		return fmt.Errorf("%s: no reader for this file", path)
	}
	ls, err := read(path)
	if err != nil {
		return err
	}
	for _, l := range ls {
		m := l.Meta
		fmt.Fprintf(w, "%-40s %s %v opacity=%.2f visible=%t", m.Name, l.Data.DType(), l.Data.Shape, m.Opacity, m.Visible)
		if m.Colormap != "" {
			fmt.Fprintf(w, " colormap=%s", m.Colormap)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func samples(w io.Writer, cfg config.Config) {
	for _, s := range plugin.Samples(cfg) {
		if s.Path != "" {
			fmt.Fprintf(w, "%-26s %s\n", s.Name, s.Path)
			continue
		}
		fmt.Fprintf(w, "%-26s (loaded on demand)\n", s.Name)
	}
}
