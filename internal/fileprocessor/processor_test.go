package fileprocessor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/mdcart/internal/checksum"
	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/mdcart/internal/loader"
	"github.com/retroenv/mdcart/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	file := writeImage(t, dir, "game.bin", 10)

	opts := options.Program{
		Parameters: options.Parameters{
			Input:  file,
			MemViz: filepath.Join(dir, "header.dot"),
		},
		Flags: options.Flags{Format: "auto"},
	}
	busOptions := options.Bus{
		Pokes: []options.Access{{Address: 0xFF0000, Value: 0x41}},
		Peeks: []uint32{0x000000, 0x900000},
		Dump:  &options.Range{Start: 0xFF0000, Length: 4},
		Width: 4,
	}

	var buf bytes.Buffer
	err := ProcessFile(log.NewTestLogger(t), opts, busOptions, &buf)
	assert.NoError(t, err)
	assert.Equal(t, "FF0000: 41 00 00 00 |A...|\n", buf.String())

	graph, err := os.ReadFile(opts.MemViz)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(graph), "digraph"))
}

func TestProcessFileStrict(t *testing.T) {
	file := writeImage(t, t.TempDir(), "game.bin", 11)

	opts := options.Program{
		Parameters: options.Parameters{Input: file},
	}

	var buf bytes.Buffer
	assert.NoError(t, ProcessFile(log.NewTestLogger(t), opts, options.Bus{}, &buf))

	opts.Strict = true
	err := ProcessFile(log.NewTestLogger(t), opts, options.Bus{}, &buf)
	assert.True(t, errors.Is(err, checksum.ErrMismatch))
}

func TestProcessFileFormatOption(t *testing.T) {
	file := writeImage(t, t.TempDir(), "game.smd", 10)

	opts := options.Program{
		Parameters: options.Parameters{Input: file},
	}
	err := ProcessFile(log.NewTestLogger(t), opts, options.Bus{}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, loader.ErrUnsupportedFormat))

	opts.Format = "split"
	assert.NoError(t, ProcessFile(log.NewTestLogger(t), opts, options.Bus{}, &bytes.Buffer{}))
}

func TestGetFilesToProcess(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.bin", 10)
	writeImage(t, dir, "b.bin", 10)
	writeImage(t, dir, "c.gen", 10)

	opts := options.Program{Parameters: options.Parameters{Batch: filepath.Join(dir, "*.bin")}}
	files, err := GetFilesToProcess(&opts)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(files))

	opts = options.Program{Parameters: options.Parameters{Input: "game.bin"}}
	files, err = GetFilesToProcess(&opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{"game.bin"}, files)
}

// writeImage writes an image with a 4 byte body summing up to 10 and the
// given declared checksum.
func writeImage(t *testing.T, dir, name string, sum uint16) string {
	t.Helper()

	h := &header.Header{
		Checksum: sum,
		ROMEnd:   header.Size + 4,
		RAMStart: 0xFF0000,
		RAMEnd:   0xFFFFFF,
	}
	data := append(h.Encode(), 1, 2, 3, 4)

	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return file
}
