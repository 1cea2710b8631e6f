// Command usvol loads, converts and inspects ultrasound volumes stored as
// DICOM files or HDF5 containers.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	yml "gopkg.in/yaml.v2"

	"github.com/robert-malhotra/go-usvol/config"
	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/dicom"
	"github.com/robert-malhotra/go-usvol/loader"
)

var (
	// Version is the version number. Typically injected via ldflags with git build
	Version = "0.1.0"

	verbose = flag.Bool("v", false, "log load and save progress")
	cfgFile = flag.String("config", config.FileName, "configuration file")

	warn = color.New(color.FgYellow)
	fail = color.New(color.FgRed, color.Bold)
)

// colorWriter paints everything written through it.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func setupLogging() {
	ops := colorWriter{w: color.Error, c: warn}
	var diag io.Writer
	if *verbose {
		diag = os.Stderr
	}
	loader.SetLogWriters(ops, diag)
	dicom.SetLogWriters(ops, diag)
	container.SetLogWriters(ops, diag)
}

func root() {
	str := `usvol reads volumetric ultrasound data from DICOM files and HDF5 containers

Usage:
	usvol [-v] [-config file] <command> [arguments]

Commands:
	inspect <file.h5>         print the tree of a container
	load <path>               load a volume and print its shape and spacing
	convert <in> <out.h5>     save a volume as the raw dataset of a new container
	save <side.role=path>...  save volumes as viewer layers to the results file
	layers <file.h5>          print the viewer layers of a saved container
	samples                   list the sample datasets
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `usvol is amenable to configuration via its .yml file. For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used. Every key can also be
set from the environment with the USVOL_ prefix, e.g. USVOL_SAMPLE_DATA_DIR.
The command mkconf generates the configuration file with the default values.

sample_data_dir holds the sample containers A01_130417_raw.hdf5 and
xxx_segmented.hdf5; sample_dicom names the DICOM file shown as the sample image.
display_policy may name a YAML file replacing the built-in presentation of the
segmentation stages.`
	fmt.Println(str)
}

func loadConfig() config.Config {
	c, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	return c
}

func mkconf() {
	c := loadConfig()
	f, err := os.Create(*cfgFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := config.Write(f, c); err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := loadConfig()
	if err := yml.NewEncoder(os.Stdout).Encode(c); err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("usvol version %v\n", Version)
}

func need(args []string, n int) {
	if len(args) < n {
		root()
		os.Exit(2)
	}
}

func main() {
	flag.Usage = root
	flag.Parse()
	setupLogging()

	args := flag.Args()
	if len(args) < 1 {
		root()
		return
	}
	var err error
	switch args[0] {
	case "inspect":
		need(args, 2)
		err = inspect(os.Stdout, args[1])
	case "load":
		need(args, 2)
		err = load(os.Stdout, args[1])
	case "convert":
		need(args, 3)
		err = convert(args[1], args[2], loadConfig())
	case "save":
		need(args, 2)
		err = save(os.Stdout, args[1:], loadConfig())
	case "layers":
		need(args, 2)
		err = layers(os.Stdout, args[1])
	case "samples":
		samples(os.Stdout, loadConfig())
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "version":
		pversion()
	default:
		root()
	}
	if err != nil {
		fail.Fprintf(color.Error, "usvol %s: %v\n", args[0], err)
		os.Exit(1)
	}
}
