package engine

import (
	"errors"
	"fmt"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/gameModel"
)

var (
	ErrInvalidInputFormat = errors.New("invalid input format")
	ErrNoGuessFound       = errors.New("no guess found")
	ErrNoCurrentGuess     = errors.New("no current guess to apply feedback to")
	ErrAlreadyStarted     = errors.New("starting guess already played")
)

// InvalidInputError describes a feedback line that could not be parsed.
type InvalidInputError struct {
	Input string
	// Pos is the index of the first unknown symbol, or -1 for a length error.
	Pos int
}

func (e *InvalidInputError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("invalid input format: expected %d symbols like %q, got %q",
			gameModel.WordLength, gameModel.ExpectedFormat, e.Input)
	}
	return fmt.Sprintf("invalid input format: unknown symbol %q at position %d in %q (use g, y or n)",
		e.Input[e.Pos], e.Pos, e.Input)
}

func (e *InvalidInputError) Unwrap() []error {
	if e.Pos < 0 {
		return []error{ErrInvalidInputFormat, analyzer.ErrInvalidWordLength}
	}
	return []error{ErrInvalidInputFormat}
}
