// Package session runs one solver game: it suggests guesses, reads the
// player's feedback, narrows the candidates and records the outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tiggercwh/crackle/engine"
	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/logging"
)

const DefaultMaxGuesses = 6

var (
	ErrQuit           = errors.New("player quit")
	ErrNoStartingWord = errors.New("no starting word available")
	ErrNotStarted     = errors.New("session has not been started")
	ErrGameOver       = errors.New("game is already over")
)

// InputSource supplies the feedback line for a guess, such as "gyngy".
type InputSource interface {
	Feedback(ctx context.Context, guess string) (string, error)
}

// OutputSink presents the game to the player.
type OutputSink interface {
	Welcome(start string)
	Guess(round, maxRounds int, guess string)
	// Known reports the letters the answer must and must not contain,
	// each in ascending order. It is sent before every guess after the first.
	Known(required, excluded string)
	Scored(result []gameModel.LetterResult)
	InvalidFeedback(err error)
	Won(word string, guesses int)
	OutOfGuesses(pattern string)
	Stumped(pattern string)
	FatalError(err error)
}

// ResultSink stores finished games. *store.Store satisfies it.
type ResultSink interface {
	SaveResult(ctx context.Context, r gameModel.GameResult) error
}

// WordSource returns the stored words matching a pattern such as "a__l_".
// *store.Store satisfies it.
type WordSource interface {
	FilterWords(ctx context.Context, pattern string) ([]string, error)
}

type Options struct {
	Input      InputSource
	Output     OutputSink
	Results    ResultSink // optional
	Words      WordSource // consulted when Step is given a nil pool
	MaxGuesses int        // DefaultMaxGuesses when zero
	Rand       *rand.Rand // optional, for a reproducible starting word
	Log        *logging.Logger
	SessionLog *logging.SessionLog // optional
}

// Session is one game. It is not safe for concurrent use.
type Session struct {
	ID         string
	StartedAt  time.Time
	engine     *engine.Engine
	input      InputSource
	output     OutputSink
	results    ResultSink
	words      WordSource
	maxGuesses int
	rng        *rand.Rand
	log        *logging.Logger
	sessionLog *logging.SessionLog
	history    [][]gameModel.LetterResult
	outcome    Outcome
	result     gameModel.GameResult
}

func New(opts Options) *Session {
	s := &Session{
		ID:         uuid.New().String(),
		StartedAt:  time.Now(),
		engine:     engine.New(),
		input:      opts.Input,
		output:     opts.Output,
		results:    opts.Results,
		words:      opts.Words,
		maxGuesses: opts.MaxGuesses,
		rng:        opts.Rand,
		log:        opts.Log,
		sessionLog: opts.SessionLog,
	}
	if s.maxGuesses <= 0 {
		s.maxGuesses = DefaultMaxGuesses
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logging.Default
	}
	s.engine.SetLogger(s.log)
	return s
}

// Start picks the first guess uniformly from startingWords, normally the
// top ranked words of the corpus.
func (s *Session) Start(startingWords []string) error {
	if len(startingWords) == 0 {
		return ErrNoStartingWord
	}
	word := startingWords[s.rng.Intn(len(startingWords))]
	if err := s.engine.SetStartingGuess(word); err != nil {
		return fmt.Errorf("starting word %q: %w", word, err)
	}
	s.record("started with " + word)
	return nil
}

func (s *Session) Engine() *engine.Engine { return s.engine }

func (s *Session) MaxGuesses() int { return s.maxGuesses }

// Outcome is where a game stands after a round.
type Outcome int

const (
	Playing Outcome = iota
	Won
	OutOfGuesses
	Stumped
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case OutOfGuesses:
		return "out of guesses"
	case Stumped:
		return "stumped"
	default:
		return "playing"
	}
}

// Round is what one accepted feedback line produced.
type Round struct {
	Guess   string
	Result  []gameModel.LetterResult
	Outcome Outcome
	Next    string // next guess while still Playing
}

// Step applies one feedback line for the current guess and moves the game
// on: won, out of guesses, stumped or a new guess picked from pool. A nil
// pool is fetched from the WordSource by the resolved pattern.
// Malformed feedback returns an error matching engine.ErrInvalidInputFormat
// and leaves the game untouched. A finished game is handed to the
// ResultSink; a save error is returned alongside the final Round.
func (s *Session) Step(ctx context.Context, line string, pool []string) (Round, error) {
	if s.outcome != Playing {
		return Round{}, ErrGameOver
	}
	guess := s.engine.CurrentGuess()
	if guess == "" {
		return Round{}, ErrNotStarted
	}
	fb, err := engine.ParseFeedback(line)
	if err != nil {
		return Round{Guess: guess}, err
	}
	if err := s.engine.ApplyFeedback(fb); err != nil {
		return Round{Guess: guess}, err
	}

	round := Round{Guess: guess, Result: gameModel.Results(guess, fb)}
	s.history = append(s.history, round.Result)
	s.record(fmt.Sprintf("round %d %s %s", s.engine.Rounds(), guess, fb))

	switch {
	case s.engine.HasWon():
		round.Outcome = Won
	case s.engine.Rounds() >= s.maxGuesses:
		round.Outcome = OutOfGuesses
	default:
		if pool == nil && s.words != nil {
			if pool, err = s.words.FilterWords(ctx, s.engine.Pattern()); err != nil {
				return round, err
			}
		}
		next, err := s.engine.NextGuess(pool)
		if errors.Is(err, engine.ErrNoGuessFound) {
			round.Outcome = Stumped
			break
		}
		if err != nil {
			return round, err
		}
		round.Next = next
	}

	if round.Outcome != Playing {
		s.outcome = round.Outcome
		return round, s.finish(ctx)
	}
	return round, nil
}

// Run plays the game against pool until it is won, the guess budget runs
// out or no candidate is left. Malformed feedback is reported and asked for
// again without using up a guess.
//
// ErrQuit and context errors end the game without recording it.
func (s *Session) Run(ctx context.Context, pool []string) (gameModel.GameResult, error) {
	guess := s.engine.CurrentGuess()
	if guess == "" {
		return gameModel.GameResult{}, ErrNotStarted
	}
	s.output.Welcome(guess)

	for {
		if err := ctx.Err(); err != nil {
			return gameModel.GameResult{}, err
		}
		guess = s.engine.CurrentGuess()
		if s.engine.Rounds() > 0 {
			c := s.engine.Constraints()
			s.output.Known(c.RequiredLetters(), c.ExcludedLetters())
		}
		s.output.Guess(s.engine.Rounds()+1, s.maxGuesses, guess)

		line, err := s.input.Feedback(ctx, guess)
		if err != nil {
			if errors.Is(err, ErrQuit) {
				s.record("quit")
			}
			return gameModel.GameResult{}, err
		}

		round, err := s.Step(ctx, line, pool)
		if errors.Is(err, engine.ErrInvalidInputFormat) {
			s.output.InvalidFeedback(err)
			continue
		}
		if round.Result != nil {
			s.output.Scored(round.Result)
		}
		switch round.Outcome {
		case Won:
			s.output.Won(round.Guess, s.engine.Rounds())
		case OutOfGuesses:
			s.output.OutOfGuesses(s.engine.Pattern())
		case Stumped:
			s.output.Stumped(s.engine.Pattern())
		}
		if err != nil {
			s.output.FatalError(err)
			return s.result, err
		}
		if round.Outcome != Playing {
			return s.result, nil
		}
	}
}

// Outcome reports where the game stands.
func (s *Session) Outcome() Outcome { return s.outcome }

// Done reports whether the game has finished.
func (s *Session) Done() bool { return s.outcome != Playing }

// History returns the scored guesses so far, oldest first.
func (s *Session) History() [][]gameModel.LetterResult {
	return append([][]gameModel.LetterResult(nil), s.history...)
}

// Result is the record of a finished game.
func (s *Session) Result() gameModel.GameResult { return s.result }

func (s *Session) finish(ctx context.Context) error {
	s.result = gameModel.GameResult{
		ID:       s.ID,
		Word:     s.engine.CurrentGuess(),
		Guesses:  s.engine.Rounds(),
		Won:      s.outcome == Won,
		PlayedAt: s.StartedAt,
	}
	s.record(fmt.Sprintf("finished won=%t guesses=%d", s.result.Won, s.result.Guesses))
	if s.results == nil {
		return nil
	}
	if err := s.results.SaveResult(ctx, s.result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *Session) record(state string) {
	if err := s.sessionLog.Record(s.ID, state); err != nil {
		s.log.Warn("session %s: %v", s.ID, err)
	}
}
