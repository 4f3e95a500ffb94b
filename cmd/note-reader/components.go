package main

import (
	"time"

	"github.com/book-expert/note-reader/internal/api"
	"github.com/book-expert/note-reader/internal/importer"
	"github.com/book-expert/note-reader/internal/ocr"
	"github.com/book-expert/note-reader/internal/pipeline"
	"github.com/book-expert/note-reader/internal/reader"
	"github.com/book-expert/note-reader/internal/speech"
)

func (a *app) newImporter() *importer.Importer {
	ocrProcessor := ocr.NewProcessor(ocr.TesseractConfig{
		Language:       a.cfg.Tesseract.Language,
		OEM:            a.cfg.Tesseract.OEM,
		PSM:            a.cfg.Tesseract.PSM,
		DPI:            a.cfg.Tesseract.DPI,
		TimeoutSeconds: a.cfg.Tesseract.TimeoutSeconds,
	}, a.log)

	return importer.New(
		ocrProcessor,
		importer.NewDocconvExtractor(),
		importer.NewPdftoppmRenderer(),
		a.cfg.PreprocessOptions(),
		a.log,
	)
}

// newSpeaker falls back to a silent speaker when the TTS command is missing.
func (a *app) newSpeaker() speech.Speaker {
	speaker, err := speech.NewCommandSpeaker(speech.CommandConfig{
		Command:   a.cfg.Speech.Command,
		Args:      a.cfg.Speech.Args,
		VoiceFlag: a.cfg.Speech.VoiceFlag,
		Voice:     a.cfg.Speech.Voice,
	}, a.log)
	if err != nil {
		a.log.Warnf("Speech disabled: %v", err)

		return speech.Nop{}
	}

	return speaker
}

func (a *app) newReaderService() *reader.Service {
	return reader.NewService(a.newSpeaker(), reader.Options{
		MaxSentences: a.cfg.Analysis.MaxSentences,
		AutoRead:     a.cfg.Speech.AutoRead,
	}, a.log)
}

func (a *app) newPipeline() *pipeline.Pipeline {
	return pipeline.New(a.newImporter(), pipeline.Options{
		Workers:      a.cfg.Service.Workers,
		MaxSentences: a.cfg.Analysis.MaxSentences,
	}, a.log)
}

func (a *app) newServer() *api.Server {
	return api.NewServer(api.Options{
		Address:        a.cfg.Server.Address,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		RequestTimeout: time.Duration(a.cfg.Server.RequestTimeoutSeconds) * time.Second,
		MaxSentences:   a.cfg.Analysis.MaxSentences,
	}, a.newImporter(), a.log)
}
