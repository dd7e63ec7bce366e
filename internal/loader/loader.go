// Package loader handles cartridge image loading for the supported container formats.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/mdcart/internal/checksum"
	"github.com/retroenv/mdcart/internal/detector"
	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrHeaderInvalid is returned when the header declares more ROM than the file contains.
	ErrHeaderInvalid = errors.New("invalid ROM header")
	// ErrUnsupportedFormat is returned for unknown or unimplemented container formats.
	ErrUnsupportedFormat = errors.New("unsupported container format")
)

// Image is a decoded cartridge image.
type Image struct {
	Header *header.Header
	ROM    []byte

	// Warnings contains non fatal problems found while loading, like a
	// checksum mismatch.
	Warnings []error
}

// Loader handles loading cartridge images from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new cartridge loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load loads a cartridge image, detecting the container format from the
// file extension.
func (l *Loader) Load(path string) (*Image, error) {
	return l.LoadFormat(path, detector.FromFile(path))
}

// LoadFormat loads a cartridge image using the given container format.
func (l *Loader) LoadFormat(path string, format detector.Format) (*Image, error) {
	// fail before touching the file system for formats that can not be read
	if err := checkFormat(format, path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file info %s: %w", path, err)
	}

	img, err := l.LoadReader(file, info.Size(), format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return img, nil
}

// LoadReader loads a cartridge image of the given total size from a reader.
func (l *Loader) LoadReader(r io.ReadSeeker, size int64, format detector.Format) (*Image, error) {
	if err := checkFormat(format, ""); err != nil {
		return nil, err
	}

	h, err := header.Read(r)
	if err != nil {
		return nil, err
	}
	l.logHeader(h)

	length := h.ROMLength()
	if length < 0 || length > size {
		return nil, fmt.Errorf("%w: declared ROM length %d, file size %d", ErrHeaderInvalid, length, size)
	}

	var rom []byte
	switch format {
	case detector.Raw:
		rom, err = readRaw(r, length)
	case detector.SplitHeader:
		rom, err = readSplitHeader(r)
	}
	if err != nil {
		return nil, err
	}

	img := &Image{
		Header: h,
		ROM:    rom,
	}

	if err := checksum.Validate(h, rom); err != nil {
		var mismatch *checksum.MismatchError
		if errors.As(err, &mismatch) {
			l.logger.Warn("Checksum mismatch",
				log.Hex("expected", mismatch.Expected),
				log.Hex("got", mismatch.Computed))
		}
		img.Warnings = append(img.Warnings, err)
	}

	return img, nil
}

func checkFormat(format detector.Format, path string) error {
	switch format {
	case detector.Raw, detector.SplitHeader:
		return nil
	case detector.SplitBlock:
		return fmt.Errorf("%w: split block images are not supported", ErrUnsupportedFormat)
	default:
		if path == "" {
			return fmt.Errorf("%w: unknown format '%s'", ErrUnsupportedFormat, format)
		}
		return fmt.Errorf("%w: unknown file type '%s'", ErrUnsupportedFormat, path)
	}
}

// readRaw reads the whole file as ROM, the header is part of the image.
// Short images are zero padded up to the declared length.
func readRaw(r io.ReadSeeker, length int64) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to image start: %w", err)
	}

	rom, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ROM data: %w", err)
	}

	if missing := length - int64(len(rom)); missing > 0 {
		rom = append(rom, make([]byte, missing)...)
	}
	return rom, nil
}

// readSplitHeader reads the header and the remainder of the file separately
// and concatenates them. The remainder is taken as is, no block
// deinterleaving is applied.
func readSplitHeader(r io.ReadSeeker) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to image start: %w", err)
	}

	rom := make([]byte, header.Size)
	if _, err := io.ReadFull(r, rom); err != nil {
		return nil, fmt.Errorf("reading header data: %w", err)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ROM data: %w", err)
	}
	return append(rom, rest...), nil
}

func (l *Loader) logHeader(h *header.Header) {
	for _, field := range h.Fields() {
		l.logger.Debug("Header", log.String(field.Name, field.Value))
	}
}
