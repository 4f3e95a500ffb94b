package speech_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/note-reader/internal/speech"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	return log
}

// newSleepSpeaker speaks by sleeping for the number of seconds given as text.
func newSleepSpeaker(t *testing.T) *speech.CommandSpeaker {
	t.Helper()

	speaker, err := speech.NewCommandSpeaker(speech.CommandConfig{Command: "sleep"}, newTestLogger(t))
	require.NoError(t, err)

	return speaker
}

func TestNewCommandSpeaker_MissingCommand(t *testing.T) {
	t.Parallel()

	_, err := speech.NewCommandSpeaker(
		speech.CommandConfig{Command: "definitely-not-a-tts-engine"},
		newTestLogger(t),
	)
	require.ErrorIs(t, err, speech.ErrSpeechCommandMissing)
}

func TestSpeak_BlankTextIsNotSpoken(t *testing.T) {
	t.Parallel()

	speaker := newSleepSpeaker(t)

	id, err := speaker.Speak(context.Background(), "  \n ")
	require.NoError(t, err)
	require.Empty(t, id)
	require.False(t, speaker.Speaking())
}

func TestSpeak_StopSilencesCurrentUtterance(t *testing.T) {
	t.Parallel()

	speaker := newSleepSpeaker(t)

	id, err := speaker.Speak(context.Background(), "30")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.True(t, speaker.Speaking())

	start := time.Now()

	require.NoError(t, speaker.Stop())
	require.False(t, speaker.Speaking())
	require.Less(t, time.Since(start), 5*time.Second)

	require.NoError(t, speaker.Stop(), "stop is idempotent")
}

func TestSpeak_NewUtteranceFlushesPrevious(t *testing.T) {
	t.Parallel()

	speaker := newSleepSpeaker(t)

	first, err := speaker.Speak(context.Background(), "30")
	require.NoError(t, err)

	second, err := speaker.Speak(context.Background(), "30")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, speaker.Speaking())
	require.NoError(t, speaker.Stop())
}

func TestSpeak_FinishedUtteranceClearsState(t *testing.T) {
	t.Parallel()

	speaker := newSleepSpeaker(t)

	_, err := speaker.Speak(context.Background(), "0")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !speaker.Speaking()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSpeak_PassesVoiceAndTextAsArguments(t *testing.T) {
	t.Parallel()

	outputPath := filepath.Join(t.TempDir(), "args.txt")
	speaker, err := speech.NewCommandSpeaker(speech.CommandConfig{
		Command:   "sh",
		Args:      []string{"-c", `echo "$@" > "$0"`, outputPath},
		VoiceFlag: "-v",
		Voice:     "en-us",
	}, newTestLogger(t))
	require.NoError(t, err)

	_, err = speaker.Speak(context.Background(), "Read this aloud.")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, readErr := os.ReadFile(outputPath)

		return readErr == nil && string(data) == "-v en-us Read this aloud.\n"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var speaker speech.Speaker = speech.Nop{}

	id, err := speaker.Speak(context.Background(), "hello")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	id, err = speaker.Speak(context.Background(), " ")
	require.NoError(t, err)
	require.Empty(t, id)

	require.NoError(t, speaker.Stop())
}
