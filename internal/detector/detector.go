// Package detector handles cartridge container format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/mdcart/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Format is a cartridge image container format.
type Format string

// Supported and recognized container formats.
const (
	Unknown     Format = ""
	Raw         Format = "raw"   // plain image, header included in the ROM data
	SplitHeader Format = "split" // header read separately, remainder appended unchanged
	SplitBlock  Format = "smd"   // recognized but not supported
)

// FormatFromString returns the format for an explicit format option.
// Auto or an empty string return Unknown.
func FormatFromString(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Unknown, true
	case "raw", "bin":
		return Raw, true
	case "split", "md":
		return SplitHeader, true
	case "smd":
		return SplitBlock, true
	default:
		return Unknown, false
	}
}

// extensions maps lower case file extensions to their container format.
var extensions = map[string]Format{
	".bin": Raw,
	".gen": Raw,
	".md":  Raw,
	".smd": SplitBlock,
}

// FromFile determines the container format based on the file extension.
func FromFile(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	return extensions[ext]
}

// Detector handles container format detection.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the container format from options or file auto-detection.
// It first checks if a format is explicitly specified in options, otherwise
// attempts to detect the format from the input filename extension.
func (d *Detector) Detect(opts options.Program) Format {
	format, _ := FormatFromString(opts.Format)
	if format == Unknown {
		format = FromFile(opts.Input)
		d.logger.Debug("Auto-detected format",
			log.String("format", string(format)),
			log.String("file", opts.Input))
	}
	return format
}
