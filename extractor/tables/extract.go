// Package tables detects ruled tables on PDF pages and returns their cell grids.
//
// Two flavors are available. The lattice flavor builds grids from the ruling
// lines drawn on the page and is the default. The stream flavor hands the page
// to unipdf's text-layout table detection for tables drawn without lines.
package tables

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aqlanhadi/dsx/extractor/common"
	"github.com/spf13/viper"
)

const (
	FlavorLattice = "lattice"
	FlavorStream  = "stream"
)

var ErrUnknownFlavor = errors.New("unknown table flavor")

type Options struct {
	Flavor string
	// LineScale sets the shortest ruling kept: page dimension / LineScale.
	LineScale float64
	// StripText lists characters removed from every cell.
	StripText string
	// SplitText splits words that cross a cell border between the cells.
	SplitText bool
	// Tolerance in points for thin rectangles and ruling alignment.
	Tolerance float64
	// LicenseKey is the UniDoc metered key used by the stream flavor.
	LicenseKey string
}

func DefaultOptions() Options {
	return Options{
		Flavor:    FlavorLattice,
		LineScale: 40,
		StripText: "\n",
		SplitText: true,
		Tolerance: 2,
	}
}

// OptionsFromConfig reads the extract.* keys, keeping defaults for unset ones.
func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if viper.IsSet("extract.flavor") {
		opts.Flavor = viper.GetString("extract.flavor")
	}
	if viper.IsSet("extract.line_scale") {
		opts.LineScale = viper.GetFloat64("extract.line_scale")
	}
	if viper.IsSet("extract.strip_text") {
		opts.StripText = viper.GetString("extract.strip_text")
	}
	if viper.IsSet("extract.split_text") {
		opts.SplitText = viper.GetBool("extract.split_text")
	}
	if viper.IsSet("extract.tolerance") {
		opts.Tolerance = viper.GetFloat64("extract.tolerance")
	}
	opts.LicenseKey = viper.GetString("unidoc.license_key")
	return opts
}

func (o Options) validate() error {
	switch o.Flavor {
	case FlavorLattice, FlavorStream:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFlavor, o.Flavor)
	}
	if o.LineScale <= 0 {
		return fmt.Errorf("line scale must be positive, got %v", o.LineScale)
	}
	return nil
}

// Extract returns the tables found on the selected pages, in document order.
// Finding no table is not an error; an unreadable document is.
func Extract(path string, spec PageSpec, opts Options) ([]common.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractReader(file, spec, opts)
}

func ExtractReader(rs io.ReadSeeker, spec PageSpec, opts Options) ([]common.Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	log.Printf("\t🔎 Extracting %s tables from pages %s", opts.Flavor, spec)

	switch opts.Flavor {
	case FlavorStream:
		return extractStream(rs, spec, opts)
	default:
		return extractLattice(rs, spec, opts)
	}
}
