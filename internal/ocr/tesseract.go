// Package ocr provides the OCR boundary of the note reader: a Tesseract
// processor that turns a page image into raw text, and the Cleaner that
// repairs OCR artifacts in that text.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/book-expert/logger"
)

const (
	// DefaultBinary is the Tesseract executable looked up on PATH.
	DefaultBinary = "tesseract"
	// FallbackPSM treats the image as a uniform block of text. It is used for
	// the single retry after a timeout.
	FallbackPSM = 6
)

var (
	// ErrInvalidExtension indicates that the file is not a supported image type.
	ErrInvalidExtension = errors.New("unsupported image extension")
	// ErrPathIsDirectory indicates that the provided path is a directory, not a file.
	ErrPathIsDirectory = errors.New("path is a directory")
	// ErrFileEmpty indicates that the file is empty.
	ErrFileEmpty = errors.New("file is empty")
	// ErrOCRResultEmpty indicates that the OCR processing returned an empty result.
	ErrOCRResultEmpty = errors.New("empty OCR result")
)

// SupportedExtensions lists the image extensions accepted by the processor.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".webp"}

// TesseractConfig holds configuration parameters for Tesseract OCR engine.
type TesseractConfig struct {
	// Binary overrides the executable name. Empty means DefaultBinary.
	Binary string

	// Language specifies the OCR language model to use (e.g., "eng").
	// Multiple languages can be specified with "+" separator (e.g., "eng+fra").
	Language string

	// OEM (OCR Engine Mode): 0 legacy, 1 LSTM, 2 both, 3 default.
	OEM int

	// PSM (Page Segmentation Mode): 3 fully automatic, 6 uniform block,
	// 13 raw line.
	PSM int

	// DPI specifies the dots per inch of the input image.
	DPI int

	// TimeoutSeconds bounds a single Tesseract run.
	TimeoutSeconds int
}

// Processor runs the Tesseract CLI on page images. The text it returns is the
// raw engine output; cleaning is the caller's separate step.
type Processor struct {
	logger *logger.Logger
	config TesseractConfig
}

// NewProcessor creates a new Tesseract OCR processor with the specified configuration.
func NewProcessor(config TesseractConfig, log *logger.Logger) *Processor {
	if config.Binary == "" {
		config.Binary = DefaultBinary
	}

	return &Processor{
		config: config,
		logger: log,
	}
}

// IsSupportedImage reports whether path has one of SupportedExtensions.
func IsSupportedImage(path string) bool {
	extension := strings.ToLower(filepath.Ext(path))

	for _, supported := range SupportedExtensions {
		if extension == supported {
			return true
		}
	}

	return false
}

// ProcessImage performs OCR on an image file and returns the recognized raw text.
func (p *Processor) ProcessImage(ctx context.Context, imagePath string) (string, error) {
	err := p.validateFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("validate image file: %w", err)
	}

	text, err := p.runTesseract(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("run tesseract: %w", err)
	}

	rawText := strings.TrimSpace(text)
	if rawText == "" {
		return "", fmt.Errorf("empty OCR result for %s: %w", imagePath, ErrOCRResultEmpty)
	}

	return rawText, nil
}

// validateFile checks if the image file exists and is readable.
func (p *Processor) validateFile(imagePath string) error {
	if !IsSupportedImage(imagePath) {
		return fmt.Errorf("%s: %w", imagePath, ErrInvalidExtension)
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return fmt.Errorf("access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory %s: %w", imagePath, ErrPathIsDirectory)
	}

	if info.Size() == 0 {
		return fmt.Errorf("file is empty %s: %w", imagePath, ErrFileEmpty)
	}

	return nil
}

// runTesseract executes Tesseract with the configured PSM and retries once
// with FallbackPSM when the first run times out.
func (p *Processor) runTesseract(ctx context.Context, imagePath string) (string, error) {
	text, err := p.execTesseract(ctx, imagePath, p.config.PSM)
	if err == nil {
		return text, nil
	}

	if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return "", err
	}

	p.logger.Warnf(
		"Tesseract timeout for %s, retrying with PSM=%d",
		filepath.Base(imagePath),
		FallbackPSM,
	)

	text, err = p.execTesseract(ctx, imagePath, FallbackPSM)
	if err != nil {
		return "", fmt.Errorf("tesseract retry failed: %w", err)
	}

	return text, nil
}

func (p *Processor) execTesseract(ctx context.Context, imagePath string, psm int) (string, error) {
	timeout := time.Duration(p.config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}

	tesseractCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(tesseractCtx, p.config.Binary, p.buildArgs(imagePath, psm)...)

	// Limit threading so several OCR jobs can run side by side.
	cmd.Env = append(os.Environ(),
		"OMP_NUM_THREADS=1",
		"OPENBLAS_NUM_THREADS=1",
		"MKL_NUM_THREADS=1",
		"NUMEXPR_NUM_THREADS=1",
	)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(tesseractCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("tesseract timed out after %s: %w", timeout, context.DeadlineExceeded)
		}

		return "", fmt.Errorf(
			"tesseract execution failed: %w (stderr: %s)",
			err,
			strings.TrimSpace(stderr.String()),
		)
	}

	return stdout.String(), nil
}

func (p *Processor) buildArgs(imagePath string, psm int) []string {
	args := []string{filepath.Clean(imagePath), "stdout"}

	if p.config.Language != "" {
		args = append(args, "-l", p.config.Language)
	}

	if p.config.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(p.config.DPI))
	}

	args = append(args, "--oem", strconv.Itoa(p.config.OEM))
	args = append(args, "--psm", strconv.Itoa(psm))

	return args
}
