// Package engine turns per-round player feedback into accumulated
// constraints and picks the next guess from whatever candidates survive them.
package engine

import (
	"strings"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/logging"
)

const unknownSlot = '_'

// Engine holds the feedback state of one game. It is not safe for
// concurrent use.
type Engine struct {
	resolved  [gameModel.WordLength]byte
	forbidden map[Position]struct{}
	required  map[byte]struct{}
	excluded  map[byte]struct{}
	current   string
	rounds    int
	log       *logging.Logger
}

func New() *Engine {
	return &Engine{
		forbidden: make(map[Position]struct{}),
		required:  make(map[byte]struct{}),
		excluded:  make(map[byte]struct{}),
		log:       logging.Default,
	}
}

// SetLogger replaces the logger used for skipped candidates.
func (e *Engine) SetLogger(l *logging.Logger) { e.log = l }

// SetStartingGuess seeds the first guess. It can only be called before any
// feedback has been applied.
func (e *Engine) SetStartingGuess(word string) error {
	if e.rounds > 0 {
		return ErrAlreadyStarted
	}
	if err := analyzer.Validate(word); err != nil {
		return err
	}
	e.current = word
	return nil
}

func (e *Engine) CurrentGuess() string { return e.current }

// Rounds is the number of feedback lines applied so far.
func (e *Engine) Rounds() int { return e.rounds }

// ApplyFeedbackString parses and applies a line such as "gyngy".
func (e *Engine) ApplyFeedbackString(s string) error {
	fb, err := ParseFeedback(s)
	if err != nil {
		return err
	}
	return e.ApplyFeedback(fb)
}

// ApplyFeedback folds one round of feedback for the current guess into the
// state. Position i of fb describes letter i of the current guess.
//
// Absent letters are only excluded outright once every position has been
// classified: a letter that is also resolved or required (a repeated letter
// where one copy is gray) is forbidden at the gray position instead.
func (e *Engine) ApplyFeedback(fb gameModel.Feedback) error {
	if len(e.current) != gameModel.WordLength {
		return ErrNoCurrentGuess
	}

	tentative := make(map[byte][]int)
	for i, s := range fb {
		ch := e.current[i]
		switch s {
		case gameModel.Hit:
			e.resolved[i] = ch
			delete(e.excluded, ch)
		case gameModel.Present:
			e.forbidden[Position{Char: ch, Index: i}] = struct{}{}
			e.required[ch] = struct{}{}
			delete(e.excluded, ch)
		default:
			tentative[ch] = append(tentative[ch], i)
		}
	}

	for ch, positions := range tentative {
		if e.isResolved(ch) || e.isRequired(ch) {
			for _, i := range positions {
				e.forbidden[Position{Char: ch, Index: i}] = struct{}{}
			}
			continue
		}
		e.excluded[ch] = struct{}{}
	}

	e.rounds++
	return nil
}

func (e *Engine) isResolved(ch byte) bool {
	for _, r := range e.resolved {
		if r == ch {
			return true
		}
	}
	return false
}

func (e *Engine) isRequired(ch byte) bool {
	_, ok := e.required[ch]
	return ok
}

// HasWon reports whether every slot has been resolved.
func (e *Engine) HasWon() bool {
	for _, r := range e.resolved {
		if r == 0 {
			return false
		}
	}
	return true
}

// Pattern renders the resolved slots, '_' for unknown ones.
func (e *Engine) Pattern() string {
	var b strings.Builder
	for _, r := range e.resolved {
		if r == 0 {
			b.WriteByte(unknownSlot)
		} else {
			b.WriteByte(r)
		}
	}
	return b.String()
}

// Constraints snapshots the current state. The returned maps are copies.
func (e *Engine) Constraints() Constraints {
	c := Constraints{
		Current:   e.current,
		Resolved:  e.resolved,
		Forbidden: make(map[Position]struct{}, len(e.forbidden)),
		Required:  make(map[byte]struct{}, len(e.required)),
		Excluded:  make(map[byte]struct{}, len(e.excluded)),
	}
	for k := range e.forbidden {
		c.Forbidden[k] = struct{}{}
	}
	for k := range e.required {
		c.Required[k] = struct{}{}
	}
	for k := range e.excluded {
		c.Excluded[k] = struct{}{}
	}
	return c
}

// Candidates returns the words in pool that are still possible.
func (e *Engine) Candidates(pool []string) []string {
	return Filter(pool, e.Constraints())
}

// NextGuess filters pool, ranks the survivors with a fresh analyzer and makes
// the best one the current guess. ErrNoGuessFound means nothing survived.
func (e *Engine) NextGuess(pool []string) (string, error) {
	survivors := e.Candidates(pool)
	a, _ := analyzer.FromWords(survivors, e.log)
	best, ok := a.BestWord()
	if !ok {
		return "", ErrNoGuessFound
	}
	e.log.Debug("%d of %d candidates survive, next guess %s", len(survivors), len(pool), best)
	e.current = best.String()
	return e.current, nil
}
