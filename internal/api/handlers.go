package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/importer"
	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/reader"
)

var cleaner = ocr.NewCleaner()

type handler struct {
	importer     Importer
	logger       *logger.Logger
	maxSentences int
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Text string `json:"text"`
}

type sentencesResponse struct {
	Sentences []string `json:"sentences"`
}

type summarizeRequest struct {
	Text         string `json:"text"`
	MaxSentences int    `json:"max_sentences,omitempty"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type answerRequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type documentResponse struct {
	ID        string `json:"id"`
	RawText   string `json:"raw_text"`
	CleanText string `json:"clean_text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) clean(w http.ResponseWriter, r *http.Request) {
	var request textRequest
	if !h.decode(w, r, &request) {
		return
	}

	h.writeJSON(w, http.StatusOK, textResponse{Text: cleaner.Clean(request.Text)})
}

func (h *handler) sentences(w http.ResponseWriter, r *http.Request) {
	var request textRequest
	if !h.decode(w, r, &request) {
		return
	}

	h.writeJSON(w, http.StatusOK, sentencesResponse{Sentences: analysis.SplitSentences(request.Text)})
}

func (h *handler) summarize(w http.ResponseWriter, r *http.Request) {
	var request summarizeRequest
	if !h.decode(w, r, &request) {
		return
	}

	maxSentences := request.MaxSentences
	if maxSentences < 1 {
		maxSentences = h.maxSentences
	}

	summary := analysis.Summarize(cleaner.Clean(request.Text), maxSentences)

	h.writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

func (h *handler) answer(w http.ResponseWriter, r *http.Request) {
	var request answerRequest
	if !h.decode(w, r, &request) {
		return
	}

	reply := analysis.Answer(cleaner.Clean(request.Context), request.Question)

	h.writeJSON(w, http.StatusOK, answerResponse{Answer: reply})
}

// uploadDocument imports a multipart "file" field and returns its text.
func (h *handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		h.writeError(w, http.StatusServiceUnavailable, "document import is not available")

		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid file")

		return
	}
	defer func() {
		_ = file.Close()
	}()

	tempPath, cleanup, err := saveUpload(file, filepath.Base(header.Filename))
	if err != nil {
		h.logger.Errorf("Failed to store upload %s: %v", header.Filename, err)
		h.writeError(w, http.StatusInternalServerError, "could not store upload")

		return
	}
	defer cleanup()

	rawText, err := h.importer.Import(r.Context(), tempPath)
	if err != nil {
		h.logger.Warnf("Import of %s failed: %v", header.Filename, err)
		h.writeError(w, importStatus(err), err.Error())

		return
	}

	doc := reader.Open(rawText)

	h.writeJSON(w, http.StatusOK, documentResponse{ID: doc.ID, RawText: doc.Raw, CleanText: doc.Clean})
}

func importStatus(err error) int {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFileType), errors.Is(err, ocr.ErrInvalidExtension):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, importer.ErrEmptyText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// saveUpload copies the upload to a temp file keeping its extension, which
// the importer uses to classify it.
func saveUpload(src io.Reader, name string) (string, func(), error) {
	tempFile, err := os.CreateTemp("", "note-reader-upload-*"+filepath.Ext(name))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(tempFile.Name())
	}

	_, err = io.Copy(tempFile, src)
	closeErr := tempFile.Close()

	if err = errors.Join(err, closeErr); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("write temp file: %w", err)
	}

	return tempFile.Name(), cleanup, nil
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	err := json.NewDecoder(r.Body).Decode(target)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))

		return false
	}

	return true
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Errorf("Failed to encode response: %v", err)
	}
}
