// Package upload checks user-supplied files before they reach the pipeline.
package upload

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultMaxBytes is the largest resume accepted (20 MiB).
	DefaultMaxBytes = 20 * 1024 * 1024

	PDFContentType = "application/pdf"
)

var (
	ErrNoFile        = errors.New("no file provided")
	ErrTooManyFiles  = errors.New("only one file can be uploaded at a time")
	ErrTooLarge      = errors.New("file exceeds the maximum size")
	ErrUnsupported   = errors.New("only PDF files are accepted")
	ErrEmptyDocument = errors.New("file is empty")
)

// File is a candidate upload.
type File struct {
	Name string
	Data []byte
}

// Filter accepts a single PDF no larger than MaxBytes.
type Filter struct {
	MaxBytes int64
}

// NewFilter returns a filter; a non-positive maxBytes selects DefaultMaxBytes.
func NewFilter(maxBytes int64) *Filter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Filter{MaxBytes: maxBytes}
}

// Accept returns the single acceptable file or the reason it was rejected.
func (f *Filter) Accept(files []File) (*File, error) {
	switch {
	case len(files) == 0:
		return nil, ErrNoFile
	case len(files) > 1:
		return nil, ErrTooManyFiles
	}

	file := files[0]
	if len(file.Data) == 0 {
		return nil, ErrEmptyDocument
	}
	if int64(len(file.Data)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(file.Data), f.MaxBytes)
	}
	if mt := mimetype.Detect(file.Data); !mt.Is(PDFContentType) {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupported, file.Name, mt.String())
	}
	return &file, nil
}
