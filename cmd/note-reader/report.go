package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/book-expert/note-reader/internal/pipeline"
)

type batchReport struct {
	Directory string       `yaml:"directory"`
	Total     int          `yaml:"total"`
	Succeeded int          `yaml:"succeeded"`
	Failed    int          `yaml:"failed"`
	Files     []fileReport `yaml:"files"`
}

type fileReport struct {
	Path       string `yaml:"path"`
	Summary    string `yaml:"summary,omitempty"`
	CleanText  string `yaml:"clean_text,omitempty"`
	Error      string `yaml:"error,omitempty"`
	DurationMS int64  `yaml:"duration_ms"`
}

func newBatchReport(dir string, results []pipeline.ProcessingResult) batchReport {
	report := batchReport{
		Directory: dir,
		Total:     len(results),
		Files:     make([]fileReport, 0, len(results)),
	}

	for _, result := range results {
		file := fileReport{
			Path:       result.Path,
			Summary:    result.Summary,
			CleanText:  result.CleanText,
			DurationMS: result.Duration.Milliseconds(),
		}

		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++

			if result.Error != nil {
				file.Error = result.Error.Error()
			}
		}

		report.Files = append(report.Files, file)
	}

	return report
}

func writeBatchReport(stdout io.Writer, dir string, results []pipeline.ProcessingResult) error {
	encoder := yaml.NewEncoder(stdout)
	encoder.SetIndent(2)

	err := encoder.Encode(newBatchReport(dir, results))
	if err != nil {
		return fmt.Errorf("encode batch report: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("close batch report: %w", err)
	}

	return nil
}
