// Package config loads the note reader settings from project.toml, with an
// optional .env file and environment variables layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/book-expert/note-reader/internal/preprocess"
)

const DefaultConfigFilename = "project.toml"

// Environment variables that override the file.
const (
	EnvSpeechCommand = "NOTE_READER_SPEECH_COMMAND"
	EnvVoice         = "NOTE_READER_VOICE"
	EnvAddress       = "NOTE_READER_ADDRESS"
)

const (
	defaultWorkers               = 4
	defaultLanguage              = "eng"
	defaultOEM                   = 3
	defaultPSM                   = 3
	defaultDPI                   = 300
	defaultTesseractTimeout      = 60
	defaultMaxSentences          = 3
	defaultSpeechCommand         = "espeak-ng"
	defaultVoiceFlag             = "-v"
	defaultAddress               = "127.0.0.1:8080"
	defaultRequestTimeoutSeconds = 30
	maxOEM                       = 3
	maxPSM                       = 13
)

var (
	ErrInvalidWorkers  = errors.New("workers must not be negative")
	ErrInvalidOEM      = errors.New("tesseract oem must be between 0 and 3")
	ErrInvalidPSM      = errors.New("tesseract psm must be between 0 and 13")
	ErrInvalidContrast = errors.New("preprocess contrast must be positive")
)

type Config struct {
	Service    ServiceSettings    `toml:"service"`
	Tesseract  TesseractSettings  `toml:"tesseract"`
	Preprocess PreprocessSettings `toml:"preprocess"`
	Analysis   AnalysisSettings   `toml:"analysis"`
	Speech     SpeechSettings     `toml:"speech"`
	Server     ServerSettings     `toml:"server"`
}

type ServiceSettings struct {
	LogDir  string `toml:"log_dir"`
	Workers int    `toml:"workers"`
}

type TesseractSettings struct {
	Language       string `toml:"language"`
	OEM            int    `toml:"oem"`
	PSM            int    `toml:"psm"`
	DPI            int    `toml:"dpi"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type PreprocessSettings struct {
	// Disabled sends images to OCR untouched.
	Disabled bool    `toml:"disabled"`
	MaxSide  int     `toml:"max_side"`
	Contrast float64 `toml:"contrast"`
	// Sharpen is on unless set to false.
	Sharpen *bool `toml:"sharpen"`
}

type AnalysisSettings struct {
	MaxSentences int `toml:"max_sentences"`
}

type SpeechSettings struct {
	Command   string   `toml:"command"`
	Args      []string `toml:"args"`
	VoiceFlag string   `toml:"voice_flag"`
	Voice     string   `toml:"voice"`
	AutoRead  bool     `toml:"auto_read"`
}

type ServerSettings struct {
	Address               string   `toml:"address"`
	AllowedOrigins        []string `toml:"allowed_origins"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var configuration Config

	configuration.ApplyDefaults()

	return &configuration
}

// Load reads filePath (project.toml when empty), overlays .env and the
// environment, fills defaults and validates the result. A missing default
// file yields the defaults; a missing explicit file is an error.
func Load(filePath string, loggerInstance *logger.Logger) (*Config, error) {
	explicit := filePath != ""
	if !explicit {
		filePath = DefaultConfigFilename
	}

	var configuration Config

	err := decodeFile(filePath, &configuration, loggerInstance)

	switch {
	case err == nil:
	case !explicit && errors.Is(err, os.ErrNotExist):
		if loggerInstance != nil {
			loggerInstance.Infof("No %s found, using defaults", filePath)
		}
	default:
		return nil, err
	}

	_ = godotenv.Load()

	configuration.applyEnvironment()
	configuration.ApplyDefaults()

	err = configuration.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in '%s': %w", filePath, err)
	}

	return &configuration, nil
}

func decodeFile(filePath string, configuration *Config, loggerInstance *logger.Logger) error {
	configFile, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to open config file '%s': %w", filePath, err)
	}
	defer func() {
		if closeErr := configFile.Close(); closeErr != nil && loggerInstance != nil {
			loggerInstance.Warnf("Failed to close config file: %v", closeErr)
		}
	}()

	decoder := toml.NewDecoder(configFile)
	if err := decoder.Decode(configuration); err != nil {
		return fmt.Errorf("failed to decode TOML configuration: %w", err)
	}

	return nil
}

func (c *Config) applyEnvironment() {
	if value := strings.TrimSpace(os.Getenv(EnvSpeechCommand)); value != "" {
		c.Speech.Command = value
	}

	if value := strings.TrimSpace(os.Getenv(EnvVoice)); value != "" {
		c.Speech.Voice = value
	}

	if value := strings.TrimSpace(os.Getenv(EnvAddress)); value != "" {
		c.Server.Address = value
	}
}

// ApplyDefaults fills every zero value with its default. A zero OEM or PSM
// counts as unset: PSM 0 only detects orientation and yields no text.
func (c *Config) ApplyDefaults() {
	if c.Service.LogDir == "" {
		c.Service.LogDir = filepath.Join(os.TempDir(), "note-reader", "logs")
	}

	if c.Service.Workers == 0 {
		c.Service.Workers = defaultWorkers
	}

	c.applyTesseractDefaults()

	c.applyPreprocessDefaults()

	if c.Analysis.MaxSentences < 1 {
		c.Analysis.MaxSentences = defaultMaxSentences
	}

	if c.Speech.Command == "" {
		c.Speech.Command = defaultSpeechCommand
	}

	if c.Speech.VoiceFlag == "" {
		c.Speech.VoiceFlag = defaultVoiceFlag
	}

	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}

	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) applyPreprocessDefaults() {
	defaults := preprocess.DefaultOptions()

	if c.Preprocess.MaxSide == 0 {
		c.Preprocess.MaxSide = defaults.MaxSide
	}

	if c.Preprocess.Contrast == 0 {
		c.Preprocess.Contrast = defaults.Contrast
	}

	if c.Preprocess.Sharpen == nil {
		sharpen := defaults.Sharpen
		c.Preprocess.Sharpen = &sharpen
	}
}

func (c *Config) applyTesseractDefaults() {
	if c.Tesseract.OEM == 0 {
		c.Tesseract.OEM = defaultOEM
	}

	if c.Tesseract.PSM == 0 {
		c.Tesseract.PSM = defaultPSM
	}

	if c.Tesseract.Language == "" {
		c.Tesseract.Language = defaultLanguage
	}

	if c.Tesseract.DPI == 0 {
		c.Tesseract.DPI = defaultDPI
	}

	if c.Tesseract.TimeoutSeconds <= 0 {
		c.Tesseract.TimeoutSeconds = defaultTesseractTimeout
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Service.Workers < 0 {
		return fmt.Errorf("%d: %w", c.Service.Workers, ErrInvalidWorkers)
	}

	if c.Tesseract.OEM < 0 || c.Tesseract.OEM > maxOEM {
		return fmt.Errorf("%d: %w", c.Tesseract.OEM, ErrInvalidOEM)
	}

	if c.Tesseract.PSM < 0 || c.Tesseract.PSM > maxPSM {
		return fmt.Errorf("%d: %w", c.Tesseract.PSM, ErrInvalidPSM)
	}

	if c.Preprocess.Contrast <= 0 {
		return fmt.Errorf("%g: %w", c.Preprocess.Contrast, ErrInvalidContrast)
	}

	return nil
}

// PreprocessOptions returns the image preprocessing settings, or nil when
// preprocessing is disabled.
func (c *Config) PreprocessOptions() *preprocess.Options {
	if c.Preprocess.Disabled {
		return nil
	}

	options := preprocess.DefaultOptions()
	options.MaxSide = c.Preprocess.MaxSide
	options.Contrast = c.Preprocess.Contrast

	if c.Preprocess.Sharpen != nil {
		options.Sharpen = *c.Preprocess.Sharpen
	}

	return &options
}

func (c *Config) GetLogFilePath(filename string) string {
	return filepath.Join(c.Service.LogDir, filename)
}
