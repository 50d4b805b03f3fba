package memory

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

var (
	// ErrEmptyArchive is returned when a compressed cartridge contains no files.
	ErrEmptyArchive = errors.New("archive contains no files")
	// ErrBootROMMissing is returned when the boot ROM image cannot be found.
	ErrBootROMMissing = errors.New("boot rom missing")
	// ErrBootROMSize is returned for boot ROM images that are not 256 bytes.
	ErrBootROMSize = errors.New("boot rom has wrong size")
)

// LoadFile reads a cartridge or boot ROM image from disk, unpacking it when
// the extension says it is compressed (.gz, .zip, .7z). Archives are expected
// to carry the image as their first entry.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var rc io.ReadCloser
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		rc, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		rc, err = openFirstZip(data)
	case ".7z":
		rc, err = openFirst7z(data)
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer rc.Close()

	unpacked, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", filename, err)
	}

	return unpacked, nil
}

// LoadBootROM reads the 256 byte boot program.
func LoadBootROM(filename string) ([]byte, error) {
	data, err := LoadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBootROMMissing, filename)
	}
	if err != nil {
		return nil, err
	}
	if len(data) != BootROMSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrBootROMSize, filename, len(data))
	}
	return data, nil
}

func openFirstZip(data []byte) (io.ReadCloser, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if len(r.File) == 0 {
		return nil, ErrEmptyArchive
	}
	return r.File[0].Open()
}

func openFirst7z(data []byte) (io.ReadCloser, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if len(r.File) == 0 {
		return nil, ErrEmptyArchive
	}
	return r.File[0].Open()
}
