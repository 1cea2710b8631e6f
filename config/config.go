// Package config holds the settings the loaders and the CLI share: where the
// sample data and results live, and how saved datasets are compressed.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// USVOL_* environment variables (USVOL_RESULTS_DIR sets results_dir).
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

// FileName is the configuration file the CLI looks for in the working
// directory.
const FileName = "usvol.yml"

// EnvPrefix prefixes the environment overrides.
const EnvPrefix = "USVOL_"

// Config is the full configuration.
type Config struct {
	// SampleDataDir holds the sample containers listed by the sample registry.
	SampleDataDir string `koanf:"sample_data_dir" yaml:"sample_data_dir"`

	// SampleDICOM is the DICOM file behind the "Sample Dicom Image" sample.
	SampleDICOM string `koanf:"sample_dicom" yaml:"sample_dicom"`

	ResultsDir  string `koanf:"results_dir" yaml:"results_dir"`
	ResultsFile string `koanf:"results_file" yaml:"results_file"`

	// Compression is the DEFLATE level used for saved datasets, 0 to 9.
	Compression int `koanf:"compression" yaml:"compression"`

	// DisplayPolicy is a YAML display policy replacing the built-in one.
	DisplayPolicy string `koanf:"display_policy" yaml:"display_policy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleDataDir: "sample_data",
		ResultsDir:    "~/follicle_tracker/results",
		ResultsFile:   "test.hdf5",
		Compression:   9,
	}
}

// Load layers the defaults, the YAML file name and the environment. A
// missing file is not an error; an empty name skips the file.
func Load(name string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, err
	}
	if name != "" {
		if err := k.Load(file.Provider(name), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Config{}, err
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	if c.Compression < 0 || c.Compression > 9 {
		return Config{}, errors.New("config: compression must be between 0 and 9")
	}
	return c, nil
}

// Write encodes c as YAML.
func Write(w io.Writer, c Config) error {
	return yml.NewEncoder(w).Encode(c)
}

// ResultsPath returns the default destination of the composite save, with a
// leading ~ expanded to the home directory.
func (c Config) ResultsPath() string {
	return filepath.Join(ExpandHome(c.ResultsDir), c.ResultsFile)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
