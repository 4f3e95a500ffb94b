// Package importer turns a captured or imported file into raw text: images
// are preprocessed and recognized, PDFs have their text layer extracted.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/book-expert/logger"

	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/preprocess"
)

const (
	// MimeTypePDF is the content type routed to the PDF extractor.
	MimeTypePDF = "application/pdf"

	sniffLength = 512
)

var (
	// ErrUnsupportedFileType indicates a file that is neither an image nor a PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrEmptyText indicates that the file produced no text.
	ErrEmptyText = errors.New("no text found")
)

// OCRProcessor recognizes text in an image file.
type OCRProcessor interface {
	ProcessImage(ctx context.Context, imagePath string) (string, error)
}

// PDFExtractor extracts the text layer of a PDF document.
type PDFExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (string, error)
}

// Kind classifies an input file.
type Kind int

const (
	// KindUnsupported is any file that cannot be imported.
	KindUnsupported Kind = iota
	// KindImage is a raster image handled by OCR.
	KindImage
	// KindPDF is a PDF document.
	KindPDF
)

// Importer routes files to the matching text source.
type Importer struct {
	ocrProcessor OCRProcessor
	pdfExtractor PDFExtractor
	pageRenderer PageRenderer
	logger       *logger.Logger
	preprocess   *preprocess.Options
}

// New creates an Importer. A nil preprocessOptions sends images with a
// recognized extension to OCR as-is. A nil pageRenderer disables OCR of PDFs
// that have no text layer.
func New(
	ocrProcessor OCRProcessor,
	pdfExtractor PDFExtractor,
	pageRenderer PageRenderer,
	preprocessOptions *preprocess.Options,
	log *logger.Logger,
) *Importer {
	return &Importer{
		ocrProcessor: ocrProcessor,
		pdfExtractor: pdfExtractor,
		pageRenderer: pageRenderer,
		preprocess:   preprocessOptions,
		logger:       log,
	}
}

// Classify decides how path is imported, by extension first and by content
// sniffing when the extension is unknown.
func Classify(path string) (Kind, error) {
	if ocr.IsSupportedImage(path) {
		return KindImage, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return KindPDF, nil
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return KindUnsupported, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	header := make([]byte, sniffLength)

	read, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return KindUnsupported, fmt.Errorf("read file header: %w", err)
	}

	contentType := http.DetectContentType(header[:read])

	switch {
	case contentType == MimeTypePDF:
		return KindPDF, nil
	case strings.HasPrefix(contentType, "image/"):
		return KindImage, nil
	default:
		return KindUnsupported, nil
	}
}

// Import returns the raw text of the file at path.
func (i *Importer) Import(ctx context.Context, path string) (string, error) {
	kind, err := Classify(path)
	if err != nil {
		return "", err
	}

	var rawText string

	switch kind {
	case KindImage:
		rawText, err = i.importImage(ctx, path)
	case KindPDF:
		rawText, err = i.importPDF(ctx, path)
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFileType)
	}

	if err != nil {
		return "", err
	}

	if strings.TrimSpace(rawText) == "" {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyText)
	}

	return rawText, nil
}

func (i *Importer) importImage(ctx context.Context, path string) (string, error) {
	ocrInput := path
	options := i.preprocess

	// Images found by content sniffing carry an extension the OCR engine
	// rejects, so they are always re-encoded as PNG.
	if options == nil && !ocr.IsSupportedImage(path) {
		defaults := preprocess.DefaultOptions()
		options = &defaults
	}

	if options != nil {
		i.logger.Infof("Preprocessing image %s", filepath.Base(path))

		preprocessedPath, cleanup, err := preprocess.PreprocessFile(path, *options)
		if err != nil {
			return "", fmt.Errorf("preprocess image: %w", err)
		}
		defer cleanup()

		ocrInput = preprocessedPath
	}

	i.logger.Infof("Recognizing text in %s", filepath.Base(path))

	rawText, err := i.ocrProcessor.ProcessImage(ctx, ocrInput)
	if err != nil {
		return "", fmt.Errorf("OCR processing: %w", err)
	}

	return rawText, nil
}

func (i *Importer) importPDF(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	i.logger.Infof("Extracting text from PDF %s", filepath.Base(path))

	rawText, err := i.pdfExtractor.ExtractPDF(ctx, data)
	if err != nil {
		return "", fmt.Errorf("PDF extraction: %w", err)
	}

	if strings.TrimSpace(rawText) != "" || i.pageRenderer == nil {
		return rawText, nil
	}

	return i.recognizeFirstPage(ctx, path)
}

// recognizeFirstPage runs OCR on the first page of a PDF without a text layer.
func (i *Importer) recognizeFirstPage(ctx context.Context, path string) (string, error) {
	i.logger.Infof("PDF %s has no text layer, rendering first page for OCR", filepath.Base(path))

	pagePath, cleanup, err := i.pageRenderer.RenderFirstPage(ctx, path)
	if err != nil {
		return "", fmt.Errorf("render PDF page: %w", err)
	}
	defer cleanup()

	return i.importImage(ctx, pagePath)
}

// DocconvExtractor extracts PDF text with docconv, which shells out to pdftotext.
type DocconvExtractor struct{}

// NewDocconvExtractor creates the default PDFExtractor.
func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

// ExtractPDF converts data to plain text.
func (e *DocconvExtractor) ExtractPDF(ctx context.Context, data []byte) (string, error) {
	response, err := docconv.Convert(bytes.NewReader(data), MimeTypePDF, false)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled after extraction: %w", err)
	}

	return response.Body, nil
}
