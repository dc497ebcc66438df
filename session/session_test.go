package session

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/engine"
	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/logging"
)

var pool = []string{"crane", "slate", "fling", "grasp", "thing", "blame", "pride", "slope", "drink", "plant"}

type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) Feedback(_ context.Context, _ string) (string, error) {
	if len(s.lines) == 0 {
		return "", ErrQuit
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type memoryResults struct {
	saved []gameModel.GameResult
	err   error
}

func (m *memoryResults) SaveResult(_ context.Context, r gameModel.GameResult) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func newTestSession(t *testing.T, input InputSource, maxGuesses int) (*Session, *RecordingOutput, *memoryResults) {
	t.Helper()
	out := &RecordingOutput{}
	results := &memoryResults{}
	s := New(Options{
		Input:      input,
		Output:     out,
		Results:    results,
		MaxGuesses: maxGuesses,
		Rand:       rand.New(rand.NewSource(1)),
		Log:        logging.Discard(),
	})
	require.NoError(t, s.Start([]string{"crane"}))
	return s, out, results
}

func TestRunSimulatedWin(t *testing.T) {
	s, out, results := newTestSession(t, SimulatedInput{Answer: "slope"}, 6)

	result, err := s.Run(context.Background(), pool)
	require.NoError(t, err)

	assert.True(t, result.Won)
	assert.Equal(t, "slope", result.Word)
	assert.Equal(t, s.ID, result.ID)
	assert.Equal(t, len(out.Guesses), result.Guesses)
	assert.Equal(t, "crane", out.Start)
	assert.Equal(t, "crane", out.Guesses[0])
	assert.Equal(t, "won", out.Outcome)
	require.Len(t, results.saved, 1)
	assert.Equal(t, result, results.saved[0])
}

func TestRunSolvesEveryWord(t *testing.T) {
	for _, answer := range pool {
		t.Run(answer, func(t *testing.T) {
			s, _, _ := newTestSession(t, SimulatedInput{Answer: answer}, 6)
			result, err := s.Run(context.Background(), pool)
			require.NoError(t, err)
			assert.True(t, result.Won)
			assert.Equal(t, answer, result.Word)
		})
	}
}

func TestRunRepromptsOnInvalidFeedback(t *testing.T) {
	s, out, _ := newTestSession(t, &scriptedInput{lines: []string{"gyg", "ggxgg", "GGGGG"}}, 6)

	result, err := s.Run(context.Background(), pool)
	require.NoError(t, err)

	assert.Len(t, out.Invalid, 2)
	assert.Equal(t, []string{"crane", "crane", "crane"}, out.Guesses)
	assert.Equal(t, 1, result.Guesses)
	assert.True(t, result.Won)
}

func TestRunOutOfGuesses(t *testing.T) {
	s, out, results := newTestSession(t, &scriptedInput{lines: []string{"nnnng"}}, 1)

	result, err := s.Run(context.Background(), pool)
	require.NoError(t, err)

	assert.False(t, result.Won)
	assert.Equal(t, 1, result.Guesses)
	assert.Equal(t, "out of guesses", out.Outcome)
	assert.Equal(t, "____e", out.Pattern)
	assert.Len(t, results.saved, 1)
}

func TestRunStumped(t *testing.T) {
	s, out, results := newTestSession(t, &scriptedInput{lines: []string{"nnnnn"}}, 6)

	result, err := s.Run(context.Background(), []string{"crane", "cabin"})
	require.NoError(t, err)

	assert.False(t, result.Won)
	assert.Equal(t, "crane", result.Word)
	assert.Equal(t, "stumped", out.Outcome)
	require.Len(t, results.saved, 1)
	assert.False(t, results.saved[0].Won)
}

func TestRunQuitIsNotRecorded(t *testing.T) {
	s, _, results := newTestSession(t, &scriptedInput{lines: []string{"nnnng"}}, 6)

	_, err := s.Run(context.Background(), pool)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Empty(t, results.saved)
}

func TestRunReportsKnownLetters(t *testing.T) {
	s, out, _ := newTestSession(t, &scriptedInput{lines: []string{"nnnng"}}, 6)

	_, err := s.Run(context.Background(), pool)
	assert.ErrorIs(t, err, ErrQuit)

	assert.Equal(t, []string{"crane", "slope"}, out.Guesses)
	assert.Equal(t, []string{""}, out.Required)
	assert.Equal(t, []string{"acnr"}, out.Excluded)
}

func TestRunCancelled(t *testing.T) {
	s, _, results := newTestSession(t, SimulatedInput{Answer: "slope"}, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, pool)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results.saved)
}

func TestRunSaveFailure(t *testing.T) {
	s, out, results := newTestSession(t, SimulatedInput{Answer: "crane"}, 6)
	results.err = errors.New("disk full")

	result, err := s.Run(context.Background(), pool)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, result.Won)
	assert.Len(t, out.Errors, 1)
}

func TestRunRequiresStart(t *testing.T) {
	s := New(Options{Input: SimulatedInput{Answer: "crane"}, Output: &RecordingOutput{}, Log: logging.Discard()})
	_, err := s.Run(context.Background(), pool)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, DefaultMaxGuesses, s.MaxGuesses())
}

func TestStart(t *testing.T) {
	s := New(Options{Log: logging.Discard()})
	assert.ErrorIs(t, s.Start(nil), ErrNoStartingWord)
	assert.ErrorIs(t, s.Start([]string{"toolong"}), analyzer.ErrInvalidWordLength)

	top := []string{"crane", "slate", "fling", "grasp"}
	pick := func() string {
		s := New(Options{Rand: rand.New(rand.NewSource(42)), Log: logging.Discard()})
		require.NoError(t, s.Start(top))
		return s.Engine().CurrentGuess()
	}
	first := pick()
	assert.Contains(t, top, first)
	assert.Equal(t, first, pick(), "the same seed picks the same word")
}

func TestSessionLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	sessionLog, err := logging.OpenSessionLog(path)
	require.NoError(t, err)

	s := New(Options{
		Input:      SimulatedInput{Answer: "crane"},
		Output:     &RecordingOutput{},
		Log:        logging.Discard(),
		SessionLog: sessionLog,
	})
	require.NoError(t, s.Start([]string{"crane"}))
	_, err = s.Run(context.Background(), pool)
	require.NoError(t, err)
	require.NoError(t, sessionLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], s.ID+" started with crane")
	assert.Contains(t, lines[1], "round 1 crane ggggg")
	assert.Contains(t, lines[2], "finished won=true guesses=1")
}

func TestTerminalInput(t *testing.T) {
	var prompt bytes.Buffer
	in := NewTerminalInput(strings.NewReader(" GYNGY \nexit\n"), &prompt)
	ctx := context.Background()

	line, err := in.Feedback(ctx, "crane")
	require.NoError(t, err)
	assert.Equal(t, "gyngy", line)
	assert.Contains(t, prompt.String(), "CRANE")

	_, err = in.Feedback(ctx, "slate")
	assert.ErrorIs(t, err, ErrQuit)

	_, err = in.Feedback(ctx, "slate")
	assert.ErrorIs(t, err, ErrQuit, "end of input quits")
}

func TestTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewTerminalOutput(&buf)

	out.Welcome("crane")
	assert.Contains(t, buf.String(), "Welcome to Crackle!")
	assert.Contains(t, buf.String(), "Example: gyngy")
	assert.Contains(t, buf.String(), "Starting game with word: crane")

	buf.Reset()
	out.Scored([]gameModel.LetterResult{{Char: 'c', Score: gameModel.Hit}, {Char: 'r', Score: gameModel.Present}, {Char: 'a', Score: gameModel.Miss}})
	assert.Equal(t, "\033[1;32mC\033[0m\033[1;33mR\033[0m\033[1;90mA\033[0m\n", buf.String())

	buf.Reset()
	out.Guess(2, 6, "slate")
	assert.Contains(t, buf.String(), "Round 2/6")
	assert.Contains(t, buf.String(), "\033[1;32mC\033[0m", "earlier guesses are replayed")
	assert.Contains(t, buf.String(), "Try: slate")
	assert.NotContains(t, buf.String(), "Contains:")

	buf.Reset()
	out.Known("er", "an")
	out.Guess(3, 6, "pride")
	assert.Contains(t, buf.String(), "Contains: ER\n")
	assert.Contains(t, buf.String(), "Ruled out: AN\n")
}

type patternWords struct {
	words    []string
	patterns []string
}

func (p *patternWords) FilterWords(_ context.Context, pattern string) ([]string, error) {
	p.patterns = append(p.patterns, pattern)
	var out []string
	for _, w := range p.words {
		ok := len(w) == len(pattern)
		for i := 0; ok && i < len(pattern); i++ {
			ok = pattern[i] == '_' || pattern[i] == w[i]
		}
		if ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func TestStepUsesWordSource(t *testing.T) {
	words := &patternWords{words: pool}
	s := New(Options{Words: words, Rand: rand.New(rand.NewSource(1)), Log: logging.Discard()})
	require.NoError(t, s.Start([]string{"crane"}))

	round, err := s.Step(context.Background(), "nnnng", nil)
	require.NoError(t, err)
	assert.Equal(t, Playing, round.Outcome)
	assert.Equal(t, "slope", round.Next)
	assert.Equal(t, []string{"____e"}, words.patterns)
	assert.Len(t, s.History(), 1)
}

func TestStepAfterGameOver(t *testing.T) {
	s, _, results := newTestSession(t, nil, 6)

	round, err := s.Step(context.Background(), "ggggg", pool)
	require.NoError(t, err)
	assert.Equal(t, Won, round.Outcome)
	assert.True(t, s.Done())
	assert.Equal(t, "won", s.Outcome().String())
	assert.Equal(t, results.saved[0], s.Result())

	_, err = s.Step(context.Background(), "ggggg", pool)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestStepRejectsMalformedFeedback(t *testing.T) {
	s, _, _ := newTestSession(t, nil, 6)

	round, err := s.Step(context.Background(), "ggg", pool)
	assert.ErrorIs(t, err, engine.ErrInvalidInputFormat)
	assert.Equal(t, "crane", round.Guess)
	assert.Nil(t, round.Result)
	assert.Equal(t, 0, s.Engine().Rounds())
	assert.Empty(t, s.History())
}
