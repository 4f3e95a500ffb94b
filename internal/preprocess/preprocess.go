// Package preprocess prepares page photos for OCR: oversized images are
// scaled down, colour is flattened to a high-contrast gray and edges are
// mildly sharpened.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // registers the GIF decoder
	_ "image/jpeg" // registers the JPEG decoder
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // registers the BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // registers the TIFF decoder
	_ "golang.org/x/image/webp" // registers the WebP decoder
)

const (
	// DefaultMaxSide is the longest side, in pixels, kept before downscaling.
	DefaultMaxSide = 2000
	// DefaultContrast is the contrast gain applied before desaturation.
	DefaultContrast = 1.4

	sharpenGain = 1.5
	blurWeight  = 0.5
)

// ErrEmptyImage indicates that the decoded image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Options controls the preprocessing steps.
type Options struct {
	MaxSide  int
	Contrast float64
	Sharpen  bool
}

// DefaultOptions returns the settings used for camera captures.
func DefaultOptions() Options {
	return Options{MaxSide: DefaultMaxSide, Contrast: DefaultContrast, Sharpen: true}
}

// Preprocess returns a grayscale copy of src ready for OCR. src is not modified.
func Preprocess(src image.Image, opts Options) *image.Gray {
	base := downscale(src, opts.MaxSide)
	gray := contrastGray(base, opts.Contrast)

	if !opts.Sharpen {
		return gray
	}

	return sharpen(gray)
}

// PreprocessFile decodes imagePath, preprocesses it and writes the result as a
// temporary PNG. The returned cleanup removes the temporary file.
func PreprocessFile(imagePath string, opts Options) (string, func(), error) {
	src, err := decodeFile(imagePath)
	if err != nil {
		return "", nil, err
	}

	output, err := os.CreateTemp("", "note-reader-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temporary image: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(output.Name())
	}

	encodeErr := png.Encode(output, Preprocess(src, opts))
	closeErr := output.Close()

	if err := errors.Join(encodeErr, closeErr); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("write preprocessed image: %w", err)
	}

	return output.Name(), cleanup, nil
}

func decodeFile(imagePath string) (image.Image, error) {
	file, err := os.Open(filepath.Clean(imagePath))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(imagePath), err)
	}

	if src.Bounds().Empty() {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(imagePath), ErrEmptyImage)
	}

	return src, nil
}

// downscale shrinks src proportionally so its longest side is at most maxSide.
func downscale(src image.Image, maxSide int) image.Image {
	bounds := src.Bounds()
	longest := max(bounds.Dx(), bounds.Dy())

	if maxSide <= 0 || longest <= maxSide {
		return src
	}

	scale := float64(longest) / float64(maxSide)
	width := max(1, int(float64(bounds.Dx())/scale))
	height := max(1, int(float64(bounds.Dy())/scale))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	return dst
}

// contrastGray applies value*contrast + (0.5-0.5*contrast)*255 to every
// channel and then converts to luma.
func contrastGray(src image.Image, contrast float64) *image.Gray {
	if contrast <= 0 {
		contrast = 1
	}

	translate := (-0.5*contrast + 0.5) * 255
	bounds := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			adjusted := color.RGBA{
				R: clamp(float64(r>>8)*contrast + translate),
				G: clamp(float64(g>>8)*contrast + translate),
				B: clamp(float64(b>>8)*contrast + translate),
				A: 0xff,
			}
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(adjusted))
		}
	}

	return gray
}

// sharpen computes gain*pixel - weight*blur with a 3x3 box blur.
func sharpen(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			value := float64(src.GrayAt(x, y).Y)
			dst.SetGray(x, y, color.Gray{Y: clamp(sharpenGain*value - blurWeight*boxBlur(src, x, y))})
		}
	}

	return dst
}

func boxBlur(src *image.Gray, x, y int) float64 {
	bounds := src.Bounds()
	sum, count := 0.0, 0.0

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			point := image.Pt(x+dx, y+dy)
			if !point.In(bounds) {
				continue
			}

			sum += float64(src.GrayAt(point.X, point.Y).Y)
			count++
		}
	}

	return sum / count
}

func clamp(value float64) uint8 {
	switch {
	case value <= 0:
		return 0
	case value >= 255:
		return 255
	default:
		return uint8(value + 0.5)
	}
}
