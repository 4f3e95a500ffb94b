// Package reader ties the text analysis core to the speech collaborator: it
// opens recognized text as a Document and reads, summarizes or queries it.
package reader

import (
	"context"
	"fmt"
	"sync"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/speech"
)

var cleaner = ocr.NewCleaner()

// Document is one piece of recognized text. Clean is computed once by Open
// and reused by every later operation.
type Document struct {
	ID    string
	Raw   string
	Clean string
}

// Open cleans raw OCR output into a new Document.
func Open(raw string) Document {
	return Document{
		ID:    uuid.NewString(),
		Raw:   raw,
		Clean: cleaner.Clean(raw),
	}
}

// Blank reports whether the document has no text left after cleaning.
func (d Document) Blank() bool {
	return d.Clean == ""
}

// Options controls the Service.
type Options struct {
	// MaxSentences bounds summaries; values below 1 fall back to
	// analysis.DefaultMaxSentences.
	MaxSentences int
	// AutoRead speaks a document as soon as it is opened.
	AutoRead bool
}

// Service runs the reading workflow. Text results never depend on whether
// speech succeeded; speech failures are logged and kept in SpeechErr.
type Service struct {
	speaker speech.Speaker
	logger  *logger.Logger
	options Options

	mu            sync.Mutex
	lastSpeechErr error
}

// NewService creates a Service. A nil speaker is replaced by speech.Nop.
func NewService(speaker speech.Speaker, options Options, log *logger.Logger) *Service {
	if speaker == nil {
		speaker = speech.Nop{}
	}

	return &Service{
		speaker: speaker,
		options: options,
		logger:  log,
	}
}

// Open builds a Document from raw text and, with AutoRead set, starts reading it.
func (s *Service) Open(ctx context.Context, raw string) Document {
	doc := Open(raw)

	s.logger.Infof(
		"Opened document %s (%d raw chars, %d clean chars)",
		doc.ID,
		len(doc.Raw),
		len(doc.Clean),
	)

	if s.options.AutoRead && !doc.Blank() {
		_, _ = s.Read(ctx, doc)
	}

	return doc
}

// Read speaks the full clean text and returns the utterance ID.
func (s *Service) Read(ctx context.Context, doc Document) (string, error) {
	return s.speak(ctx, doc.Clean)
}

// Summarize returns the extractive summary of doc and speaks it.
func (s *Service) Summarize(ctx context.Context, doc Document) string {
	summary := analysis.Summarize(doc.Clean, s.options.MaxSentences)

	_, _ = s.speak(ctx, summary)

	return summary
}

// Ask answers question from doc and speaks the reply.
func (s *Service) Ask(ctx context.Context, doc Document, question string) string {
	answer := analysis.Answer(doc.Clean, question)

	_, _ = s.speak(ctx, answer)

	return answer
}

// Stop silences any speech in progress.
func (s *Service) Stop() error {
	err := s.speaker.Stop()
	if err != nil {
		return fmt.Errorf("stop speech: %w", err)
	}

	return nil
}

// SpeechErr returns the error of the most recent speech attempt, or nil.
func (s *Service) SpeechErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSpeechErr
}

func (s *Service) speak(ctx context.Context, text string) (string, error) {
	id, err := s.speaker.Speak(ctx, text)
	if err != nil {
		err = fmt.Errorf("speak: %w", err)
		s.logger.Warnf("Speech failed: %v", err)
	}

	s.mu.Lock()
	s.lastSpeechErr = err
	s.mu.Unlock()

	return id, err
}
