package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultRenderBinary is the Poppler tool used to rasterize PDF pages.
	DefaultRenderBinary = "pdftoppm"
	// DefaultRenderDPI is the resolution of a rendered page.
	DefaultRenderDPI = 144

	renderedPrefix = "page"
)

// PageRenderer draws the first page of a PDF as a PNG image. cleanup removes
// the image and is safe to call once the caller is done with it.
type PageRenderer interface {
	RenderFirstPage(ctx context.Context, pdfPath string) (pngPath string, cleanup func(), err error)
}

// PdftoppmRenderer renders pages with Poppler's pdftoppm, the same toolkit
// docconv calls for text extraction.
type PdftoppmRenderer struct {
	Binary string
	DPI    int
}

// NewPdftoppmRenderer creates a renderer with the default binary and resolution.
func NewPdftoppmRenderer() *PdftoppmRenderer {
	return &PdftoppmRenderer{Binary: DefaultRenderBinary, DPI: DefaultRenderDPI}
}

// RenderFirstPage writes page 1 of pdfPath into a temporary directory.
func (r *PdftoppmRenderer) RenderFirstPage(ctx context.Context, pdfPath string) (string, func(), error) {
	outputDir, err := os.MkdirTemp("", "note-reader-pdf-*")
	if err != nil {
		return "", nil, fmt.Errorf("create render directory: %w", err)
	}

	cleanup := func() {
		_ = os.RemoveAll(outputDir)
	}

	outputPrefix := filepath.Join(outputDir, renderedPrefix)

	cmd := exec.CommandContext(ctx, r.binary(), r.buildArgs(pdfPath, outputPrefix)...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		cleanup()

		return "", nil, fmt.Errorf(
			"pdftoppm execution failed: %w (stderr: %s)",
			err,
			strings.TrimSpace(stderr.String()),
		)
	}

	pngPath := outputPrefix + ".png"

	_, err = os.Stat(pngPath)
	if err != nil {
		cleanup()

		return "", nil, fmt.Errorf("rendered page missing: %w", err)
	}

	return pngPath, cleanup, nil
}

func (r *PdftoppmRenderer) binary() string {
	if r.Binary == "" {
		return DefaultRenderBinary
	}

	return r.Binary
}

func (r *PdftoppmRenderer) buildArgs(pdfPath, outputPrefix string) []string {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}

	return []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", "1",
		"-l", "1",
		"-singlefile",
		filepath.Clean(pdfPath),
		outputPrefix,
	}
}
