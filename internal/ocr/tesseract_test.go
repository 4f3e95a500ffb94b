package ocr_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/note-reader/internal/ocr"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	return log
}

// writeFakeTesseract installs a shell script standing in for the tesseract binary.
func writeFakeTesseract(t *testing.T, script string) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "fake-tesseract")
	err := os.WriteFile(binaryPath, []byte("#!/bin/sh\n"+script+"\n"), 0o700)
	require.NoError(t, err)

	return binaryPath
}

func writeImage(t *testing.T, name string) string {
	t.Helper()

	imagePath := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(imagePath, []byte("not really an image"), 0o600)
	require.NoError(t, err)

	return imagePath
}

func TestNewProcessor(t *testing.T) {
	t.Parallel()

	config := ocr.TesseractConfig{
		Language:       "eng",
		OEM:            3,
		PSM:            6,
		DPI:            300,
		TimeoutSeconds: 30,
	}

	processor := ocr.NewProcessor(config, newTestLogger(t))

	require.NotNil(t, processor)
}

func TestIsSupportedImage(t *testing.T) {
	t.Parallel()

	require.True(t, ocr.IsSupportedImage("page.PNG"))
	require.True(t, ocr.IsSupportedImage("/tmp/scan.jpeg"))
	require.True(t, ocr.IsSupportedImage("notes.webp"))
	require.False(t, ocr.IsSupportedImage("notes.pdf"))
	require.False(t, ocr.IsSupportedImage("README"))
}

func TestProcessImage_ValidationErrors(t *testing.T) {
	t.Parallel()

	validationTestCases := []struct {
		name        string
		setupFile   func(t *testing.T) string
		expectedErr error
	}{
		{
			name: "unsupported extension rejected",
			setupFile: func(_ *testing.T) string {
				return "/tmp/test.txt"
			},
			expectedErr: ocr.ErrInvalidExtension,
		},
		{
			name: "nonexistent file rejected",
			setupFile: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "nonexistent.png")
			},
			expectedErr: os.ErrNotExist,
		},
		{
			name: "directory instead of file rejected",
			setupFile: func(t *testing.T) string {
				t.Helper()
				dirPath := filepath.Join(t.TempDir(), "test.png")
				err := os.Mkdir(dirPath, 0o750)
				require.NoError(t, err)

				return dirPath
			},
			expectedErr: ocr.ErrPathIsDirectory,
		},
		{
			name: "empty file rejected",
			setupFile: func(t *testing.T) string {
				t.Helper()
				filePath := filepath.Join(t.TempDir(), "empty.jpg")
				err := os.WriteFile(filePath, []byte{}, 0o600)
				require.NoError(t, err)

				return filePath
			},
			expectedErr: ocr.ErrFileEmpty,
		},
	}

	processor := ocr.NewProcessor(ocr.TesseractConfig{Language: "eng", TimeoutSeconds: 5}, newTestLogger(t))

	for _, testCase := range validationTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			filePath := testCase.setupFile(t)

			_, err := processor.ProcessImage(context.Background(), filePath)
			require.ErrorIs(t, err, testCase.expectedErr)
		})
	}
}

func TestProcessImage_ReturnsRawEngineOutput(t *testing.T) {
	t.Parallel()

	binary := writeFakeTesseract(t, `printf 'exam-\nple  text\n\n'`)
	processor := ocr.NewProcessor(ocr.TesseractConfig{Binary: binary, TimeoutSeconds: 5}, newTestLogger(t))

	text, err := processor.ProcessImage(context.Background(), writeImage(t, "page.png"))

	require.NoError(t, err)
	require.Equal(t, "exam-\nple  text", text)
}

func TestProcessImage_PassesEngineSettings(t *testing.T) {
	t.Parallel()

	binary := writeFakeTesseract(t, `shift; echo "$@"`)
	config := ocr.TesseractConfig{
		Binary:         binary,
		Language:       "eng+fra",
		OEM:            1,
		PSM:            4,
		DPI:            300,
		TimeoutSeconds: 5,
	}
	processor := ocr.NewProcessor(config, newTestLogger(t))

	text, err := processor.ProcessImage(context.Background(), writeImage(t, "page.jpg"))

	require.NoError(t, err)
	require.Equal(t, "stdout -l eng+fra --dpi 300 --oem 1 --psm 4", text)
}

func TestProcessImage_EmptyResult(t *testing.T) {
	t.Parallel()

	binary := writeFakeTesseract(t, `printf '   \n'`)
	processor := ocr.NewProcessor(ocr.TesseractConfig{Binary: binary, TimeoutSeconds: 5}, newTestLogger(t))

	_, err := processor.ProcessImage(context.Background(), writeImage(t, "blank.png"))

	require.ErrorIs(t, err, ocr.ErrOCRResultEmpty)
}

func TestProcessImage_EngineFailureReportsStderr(t *testing.T) {
	t.Parallel()

	binary := writeFakeTesseract(t, `echo "Error opening data file" >&2; exit 1`)
	processor := ocr.NewProcessor(ocr.TesseractConfig{Binary: binary, TimeoutSeconds: 5}, newTestLogger(t))

	_, err := processor.ProcessImage(context.Background(), writeImage(t, "page.png"))

	require.Error(t, err)
	require.Contains(t, err.Error(), "Error opening data file")
}

func TestProcessImage_RetriesWithFallbackPSMAfterTimeout(t *testing.T) {
	t.Parallel()

	binary := writeFakeTesseract(t, `case "$*" in
*"--psm 6"*) echo "recovered text" ;;
*) exec sleep 10 ;;
esac`)
	processor := ocr.NewProcessor(ocr.TesseractConfig{Binary: binary, PSM: 3, TimeoutSeconds: 1}, newTestLogger(t))

	text, err := processor.ProcessImage(context.Background(), writeImage(t, "slow.png"))

	require.NoError(t, err)
	require.Equal(t, "recovered text", text)
}
