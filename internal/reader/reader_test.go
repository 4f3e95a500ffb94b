package reader_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/note-reader/internal/analysis"
	"github.com/book-expert/note-reader/internal/reader"
)

var errNoAudio = errors.New("no audio device")

// recordingSpeaker keeps every text it was asked to speak.
type recordingSpeaker struct {
	mu       sync.Mutex
	spoken   []string
	stops    int
	speakErr error
}

func (r *recordingSpeaker) Speak(_ context.Context, text string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.speakErr != nil {
		return "", r.speakErr
	}

	if text == "" {
		return "", nil
	}

	r.spoken = append(r.spoken, text)

	return "utterance", nil
}

func (r *recordingSpeaker) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stops++

	return nil
}

func (r *recordingSpeaker) Spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.spoken...)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	return log
}

const lecture = "Plants need light. Plants make sugar from light and water. " +
	"Roots take up water. Leaves hold chlorophyll. Sugar feeds the plant."

func TestOpen_CachesCleanText(t *testing.T) {
	t.Parallel()

	doc := reader.Open("Photo-\nsynthesis  happens\nin  L E A V E S.")

	require.NotEmpty(t, doc.ID)
	require.Equal(t, "Photo-\nsynthesis  happens\nin  L E A V E S.", doc.Raw)
	require.Equal(t, "Photosynthesis happens in LEAVES.", doc.Clean)
	require.False(t, doc.Blank())
	require.True(t, reader.Open(" \n\t ").Blank())
}

func TestService_Open(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		autoRead     bool
		raw          string
		expectSpoken []string
	}{
		{name: "auto read speaks clean text", autoRead: true, raw: "Hello\nworld.", expectSpoken: []string{"Hello world."}},
		{name: "auto read skips blank text", autoRead: true, raw: "\n\n", expectSpoken: nil},
		{name: "no auto read stays silent", autoRead: false, raw: "Hello world.", expectSpoken: nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			speaker := &recordingSpeaker{}
			service := reader.NewService(speaker, reader.Options{AutoRead: testCase.autoRead}, newTestLogger(t))

			service.Open(context.Background(), testCase.raw)

			require.Equal(t, testCase.expectSpoken, speaker.Spoken())
		})
	}
}

func TestService_SummarizeSpeaksSummary(t *testing.T) {
	t.Parallel()

	speaker := &recordingSpeaker{}
	service := reader.NewService(speaker, reader.Options{MaxSentences: 2}, newTestLogger(t))
	doc := reader.Open(lecture)

	summary := service.Summarize(context.Background(), doc)

	require.Equal(t, analysis.Summarize(doc.Clean, 2), summary)
	require.Equal(t, []string{summary}, speaker.Spoken())
	require.NoError(t, service.SpeechErr())
}

func TestService_AskSpeaksAnswer(t *testing.T) {
	t.Parallel()

	speaker := &recordingSpeaker{}
	service := reader.NewService(speaker, reader.Options{}, newTestLogger(t))
	doc := reader.Open(lecture)

	answer := service.Ask(context.Background(), doc, "What do roots take up?")

	require.Equal(t, "Roots take up water.", answer)
	require.Equal(t, []string{answer}, speaker.Spoken())
}

func TestService_SpeechFailureKeepsTextResult(t *testing.T) {
	t.Parallel()

	speaker := &recordingSpeaker{speakErr: errNoAudio}
	service := reader.NewService(speaker, reader.Options{}, newTestLogger(t))
	doc := reader.Open(lecture)

	answer := service.Ask(context.Background(), doc, "")
	require.Equal(t, analysis.BlankQuestionMessage, answer)
	require.ErrorIs(t, service.SpeechErr(), errNoAudio)

	_, err := service.Read(context.Background(), doc)
	require.ErrorIs(t, err, errNoAudio)
}

func TestService_Stop(t *testing.T) {
	t.Parallel()

	speaker := &recordingSpeaker{}
	service := reader.NewService(speaker, reader.Options{}, newTestLogger(t))

	require.NoError(t, service.Stop())
	require.NoError(t, service.Stop())
	require.Equal(t, 2, speaker.stops)
}

func TestNewService_NilSpeakerIsSilent(t *testing.T) {
	t.Parallel()

	service := reader.NewService(nil, reader.Options{}, newTestLogger(t))

	id, err := service.Read(context.Background(), reader.Open("Some text."))
	require.NoError(t, err)
	require.NotEmpty(t, id)
}
