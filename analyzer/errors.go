package analyzer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWordLength         = errors.New("invalid word length")
	ErrInvalidWordCharacter      = errors.New("invalid word character")
	ErrProbabilitiesNotFinalized = errors.New("probabilities not finalized")
)

// InvalidWordLengthError carries the rejected length.
type InvalidWordLengthError struct {
	Word   string
	Length int
}

func (e *InvalidWordLengthError) Error() string {
	return fmt.Sprintf("word %q must be exactly %d characters, got %d", e.Word, WordLength, e.Length)
}

func (e *InvalidWordLengthError) Unwrap() error { return ErrInvalidWordLength }

// InvalidWordCharacterError carries the first non-alphabetic character.
type InvalidWordCharacterError struct {
	Word string
	Char byte
}

func (e *InvalidWordCharacterError) Error() string {
	return fmt.Sprintf("word %q contains invalid character %q", e.Word, e.Char)
}

func (e *InvalidWordCharacterError) Unwrap() error { return ErrInvalidWordCharacter }
