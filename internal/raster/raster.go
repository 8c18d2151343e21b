// Package raster renders the first page of a PDF into a PNG preview.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// Scale is the upscale factor applied to the native page size.
	Scale = 2.0
	// nativeDPI is the PDF user-space resolution (1 unit = 1/72 inch).
	nativeDPI = 72.0

	ImageExt         = ".png"
	ImageContentType = "image/png"
)

var pdfExt = regexp.MustCompile(`(?i)\.pdf$`)

var disableConfigDir sync.Once

// ParseError reports input that is not a well-formed PDF or has no pages.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse pdf: %s: %v", e.Msg, e.Err)
	}
	return "parse pdf: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// RenderError reports a failure after the document was parsed: drawing the
// page or encoding the image.
type RenderError struct {
	Msg string
	Err error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render page: %s: %v", e.Msg, e.Err)
	}
	return "render page: " + e.Msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Result is the outcome of a rasterization. On failure Image is empty and Err
// is set; callers must check Err.
type Result struct {
	Image    []byte
	FileName string
	Width    int
	Height   int
	Err      error
}

// Rasterizer converts PDF bytes into a PNG of the first page.
type Rasterizer struct {
	scale float64
	conf  *model.Configuration
}

// New returns a Rasterizer using the default 2x scale.
func New() *Rasterizer {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Rasterizer{scale: Scale, conf: conf}
}

// Rasterize renders page 1 of data. name is the source file name and is only
// used to derive the suggested image file name.
func (r *Rasterizer) Rasterize(name string, data []byte) (res Result) {
	res.FileName = ImageFileName(name)

	// go-fitz calls into MuPDF; a crash there must not escape as a panic.
	defer func() {
		if p := recover(); p != nil {
			res.Image = nil
			res.Err = &RenderError{Msg: fmt.Sprintf("renderer panic: %v", p)}
		}
	}()

	if len(data) == 0 {
		res.Err = &ParseError{Msg: "empty input"}
		return res
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), r.conf)
	if err != nil {
		res.Err = &ParseError{Msg: "invalid document", Err: err}
		return res
	}
	if pageCount == 0 {
		res.Err = &ParseError{Msg: "document has no pages"}
		return res
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		res.Err = &ParseError{Msg: "failed to open document", Err: err}
		return res
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		res.Err = &ParseError{Msg: "document has no pages"}
		return res
	}

	img, err := doc.ImageDPI(0, nativeDPI*r.scale)
	if err != nil {
		res.Err = &RenderError{Msg: "failed to draw page 1", Err: err}
		return res
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		res.Err = &RenderError{Msg: "rendered surface is empty"}
		return res
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		res.Err = &RenderError{Msg: "failed to encode png", Err: err}
		return res
	}
	if buf.Len() == 0 {
		res.Err = &RenderError{Msg: "encoder produced no bytes"}
		return res
	}

	res.Image = buf.Bytes()
	res.Width = bounds.Dx()
	res.Height = bounds.Dy()
	return res
}

// ImageFileName swaps a trailing .pdf (any casing) for the image extension.
func ImageFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	return pdfExt.ReplaceAllString(base, "") + ImageExt
}

// IsParseError reports whether err came from a malformed or empty document.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
