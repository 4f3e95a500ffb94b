// Package pipeline runs the note reader over a directory of page scans:
// import → clean → summarize, with a bounded number of files in flight.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"golang.org/x/sync/errgroup"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/reader"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

// Importer turns a file into raw text.
type Importer interface {
	Import(ctx context.Context, path string) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	Workers      int
	MaxSentences int
}

// Pipeline processes page files into clean text and summaries. It writes
// nothing to disk; results are returned to the caller.
type Pipeline struct {
	importer     Importer
	logger       *logger.Logger
	workers      int
	maxSentences int
}

// ProcessingResult represents the result of processing a single file.
type ProcessingResult struct {
	ProcessedAt time.Time
	Error       error
	Path        string
	RawText     string
	CleanText   string
	Summary     string
	Duration    time.Duration
	Success     bool
}

// New creates a new processing pipeline.
func New(importer Importer, options Options, log *logger.Logger) *Pipeline {
	workers := options.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Pipeline{
		importer:     importer,
		logger:       log,
		workers:      workers,
		maxSentences: options.MaxSentences,
	}
}

// ProcessDirectory processes every supported file under dir and returns the
// results in path order. Files not started before ctx is done carry the
// context error.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) ([]ProcessingResult, error) {
	startTime := time.Now()

	p.logger.Infof("Starting directory processing: input=%s workers=%d", dir, p.workers)

	files, err := p.findFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("find input files: %w", err)
	}

	if len(files) == 0 {
		p.logger.Infof("No supported files found in %s", dir)

		return []ProcessingResult{}, nil
	}

	p.logger.Infof("Found %d files to process", len(files))

	results := p.processFilesParallel(ctx, files)

	p.reportResults(results, startTime)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return results, fmt.Errorf("directory processing interrupted: %w", ctxErr)
	}

	return results, nil
}

// ProcessSingle processes one file.
func (p *Pipeline) ProcessSingle(ctx context.Context, path string) ProcessingResult {
	result := p.processFile(ctx, path)

	if result.Success {
		p.logger.Successf("Processed %s in %v", filepath.Base(path), result.Duration)
	} else {
		p.logger.Errorf("Failed to process %s: %v", filepath.Base(path), result.Error)
	}

	return result
}

// findFiles recursively finds all importable files in a directory.
func (p *Pipeline) findFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(
		dir,
		func(path string, dirEntry os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !dirEntry.IsDir() && isSupportedFile(dirEntry.Name()) {
				files = append(files, path)
			}

			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}

	sort.Strings(files)

	return files, nil
}

func isSupportedFile(name string) bool {
	return ocr.IsSupportedImage(name) || strings.EqualFold(filepath.Ext(name), ".pdf")
}

// processFilesParallel fans files out to at most p.workers goroutines. Each
// goroutine owns one slot of the result slice, so order follows files.
func (p *Pipeline) processFilesParallel(ctx context.Context, files []string) []ProcessingResult {
	results := make([]ProcessingResult, len(files))

	var group errgroup.Group

	group.SetLimit(p.workers)

	for index, path := range files {
		if ctx.Err() != nil {
			results[index] = canceledResult(ctx, path)

			continue
		}

		group.Go(func() error {
			results[index] = p.processFile(ctx, path)

			return nil
		})
	}

	_ = group.Wait()

	return results
}

func canceledResult(ctx context.Context, path string) ProcessingResult {
	return ProcessingResult{
		Path:  path,
		Error: ctx.Err(),
	}
}

// processFile runs a single file through import, cleaning and summarization.
func (p *Pipeline) processFile(ctx context.Context, path string) ProcessingResult {
	if ctx.Err() != nil {
		return canceledResult(ctx, path)
	}

	startTime := time.Now()
	result := ProcessingResult{
		ProcessedAt: startTime,
		Path:        path,
	}

	rawText, err := p.importer.Import(ctx, path)
	if err != nil {
		result.Error = fmt.Errorf("import: %w", err)
		result.Duration = time.Since(startTime)

		return result
	}

	doc := reader.Open(rawText)

	result.RawText = doc.Raw
	result.CleanText = doc.Clean
	result.Summary = analysis.Summarize(doc.Clean, p.maxSentences)
	result.Duration = time.Since(startTime)
	result.Success = true

	p.logger.Infof(
		"Processed %s (%d sentences)",
		filepath.Base(path),
		len(analysis.SplitSentences(doc.Clean)),
	)

	return result
}

// reportResults logs summary statistics about the processing results.
func (p *Pipeline) reportResults(results []ProcessingResult, startTime time.Time) {
	duration := time.Since(startTime)
	successful, failed := p.countResults(results)

	p.logSummary(successful, len(results), failed, duration)
	p.logAverageTime(successful, duration)
}

// countResults counts successful and failed processing results.
func (p *Pipeline) countResults(results []ProcessingResult) (successful, failed int) {
	for i := range results {
		result := &results[i]
		if result.Success {
			successful++
		} else {
			failed++

			p.logFailedResult(result)
		}
	}

	return successful, failed
}

func (p *Pipeline) logFailedResult(result *ProcessingResult) {
	if result.Error != nil {
		p.logger.Errorf("Failed %s: %v", filepath.Base(result.Path), result.Error)
	}
}

func (p *Pipeline) logSummary(successful, total, failed int, duration time.Duration) {
	p.logger.Successf(
		"Processing complete: %d/%d successful, %d failed in %v",
		successful,
		total,
		failed,
		duration,
	)
}

func (p *Pipeline) logAverageTime(successful int, duration time.Duration) {
	if successful > 0 {
		avgTime := duration / time.Duration(successful)
		p.logger.Infof("Average time per successful file: %v", avgTime)
	}
}
