// Package speech hands text to a text-to-speech engine. The engine is an
// external command; only one utterance plays at a time.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// DefaultCommand is the TTS executable used when none is configured.
const DefaultCommand = "espeak-ng"

// ErrSpeechCommandMissing indicates that the TTS executable cannot be found.
var ErrSpeechCommandMissing = errors.New("speech command not found")

// Speaker plays text aloud. Speak returns as soon as playback has started.
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
	Stop() error
}

// CommandConfig describes how the TTS command is invoked.
type CommandConfig struct {
	Command   string
	Args      []string
	VoiceFlag string
	Voice     string
}

// CommandSpeaker runs one TTS process per utterance. Starting a new utterance
// stops the one still playing.
type CommandSpeaker struct {
	logger  *logger.Logger
	config  CommandConfig
	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	id     string
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandSpeaker resolves the configured command on PATH.
func NewCommandSpeaker(config CommandConfig, log *logger.Logger) (*CommandSpeaker, error) {
	if config.Command == "" {
		config.Command = DefaultCommand
	}

	path, err := exec.LookPath(config.Command)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.Command, ErrSpeechCommandMissing)
	}

	config.Command = path

	return &CommandSpeaker{config: config, logger: log}, nil
}

// Speak flushes any current utterance and starts speaking text. Blank text
// is not spoken and yields an empty utterance ID.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	speechCtx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(speechCtx, s.config.Command, s.buildArgs(text)...)

	err := cmd.Start()
	if err != nil {
		cancel()

		return "", fmt.Errorf("start speech command: %w", err)
	}

	current := &utterance{
		id:     uuid.NewString(),
		cmd:    cmd,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.current = current

	go s.wait(current)

	return current.id, nil
}

// Stop silences the current utterance. Calling it with nothing playing is a no-op.
func (s *CommandSpeaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	return nil
}

// Speaking reports whether an utterance is still playing.
func (s *CommandSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil
}

func (s *CommandSpeaker) stopLocked() {
	if s.current == nil {
		return
	}

	s.current.cancel()
	<-s.current.done
	s.current = nil
}

func (s *CommandSpeaker) wait(current *utterance) {
	err := current.cmd.Wait()
	current.cancel()

	// A stopped utterance ends by signal; only a command that exited on its
	// own with a failure is worth reporting.
	if err != nil && current.cmd.ProcessState != nil && current.cmd.ProcessState.Exited() {
		s.logger.Warnf("Speech command for utterance %s failed: %v", current.id, err)
	}

	close(current.done)

	s.mu.Lock()
	if s.current == current {
		s.current = nil
	}
	s.mu.Unlock()
}

func (s *CommandSpeaker) buildArgs(text string) []string {
	args := make([]string, 0, len(s.config.Args)+3)
	args = append(args, s.config.Args...)

	if s.config.VoiceFlag != "" && s.config.Voice != "" {
		args = append(args, s.config.VoiceFlag, s.config.Voice)
	}

	return append(args, text)
}

var (
	_ Speaker = (*CommandSpeaker)(nil)
	_ Speaker = Nop{}
)

// Nop is a Speaker for hosts without audio output.
type Nop struct{}

// Speak accepts the text without playing it.
func (Nop) Speak(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	return uuid.NewString(), nil
}

// Stop does nothing.
func (Nop) Stop() error {
	return nil
}
