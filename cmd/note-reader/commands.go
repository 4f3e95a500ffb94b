package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/tui"
)

func (a *app) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("open needs exactly one file: %w", errMissingArgument)
	}

	path := args[0]

	rawText, err := a.newImporter().Import(ctx, path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	service := a.newReaderService()
	doc := service.Open(ctx, rawText)

	model := tui.New(ctx, service, doc, filepath.Base(path))

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	stopErr := service.Stop()
	if stopErr != nil {
		a.log.Warnf("Failed to stop speech: %v", stopErr)
	}

	if err != nil {
		return fmt.Errorf("run reader: %w", err)
	}

	return nil
}

func (a *app) clean(stdin io.Reader, stdout io.Writer) error {
	rawText, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	return writeLine(stdout, ocr.NewCleaner().Clean(string(rawText)))
}

func (a *app) summarize(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("summarize", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	maxSentences := flags.Int("n", a.cfg.Analysis.MaxSentences, "maximum number of summary sentences")

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("parse summarize flags: %w", err)
	}

	rawText, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	cleanText := ocr.NewCleaner().Clean(string(rawText))

	return writeLine(stdout, analysis.Summarize(cleanText, *maxSentences))
}

func (a *app) ask(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("ask", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	question := flags.String("q", "", "question to answer from the text")

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("parse ask flags: %w", err)
	}

	rawText, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	cleanText := ocr.NewCleaner().Clean(string(rawText))

	return writeLine(stdout, analysis.Answer(cleanText, *question))
}

func (a *app) batch(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("batch needs exactly one directory: %w", errMissingArgument)
	}

	dir := args[0]

	results, err := a.newPipeline().ProcessDirectory(ctx, dir)
	if err != nil && results == nil {
		return fmt.Errorf("process %s: %w", dir, err)
	}

	writeErr := writeBatchReport(stdout, dir, results)
	if writeErr != nil {
		return writeErr
	}

	if err != nil {
		return fmt.Errorf("process %s: %w", dir, err)
	}

	return nil
}

func (a *app) serve(ctx context.Context) error {
	return a.newServer().Start(ctx)
}

func writeLine(stdout io.Writer, text string) error {
	_, err := fmt.Fprintln(stdout, text)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
