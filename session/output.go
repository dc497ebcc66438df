package session

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/tiggercwh/crackle/gameModel"
)

// TerminalOutput prints the game for a human at a terminal.
type TerminalOutput struct {
	w        io.Writer
	history  [][]gameModel.LetterResult
	required string
	excluded string
}

func NewTerminalOutput(w io.Writer) *TerminalOutput {
	return &TerminalOutput{w: w}
}

func (t *TerminalOutput) Welcome(start string) {
	fmt.Fprintln(t.w, "Welcome to Crackle!")
	fmt.Fprintln(t.w, "I will give you a word to try based on positional frequency.")
	fmt.Fprintf(t.w, "Enter \033[1;32mG for green\033[0m, \033[1;33mY for yellow\033[0m and N for gray, or %q to quit.\n", exitCommand)
	fmt.Fprintf(t.w, "Example: %s\n", gameModel.ExpectedFormat)
	fmt.Fprintf(t.w, "Starting game with word: %s\n", start)
}

func (t *TerminalOutput) Guess(round, maxRounds int, guess string) {
	fmt.Fprintf(t.w, "\nRound %d/%d\n", round, maxRounds)
	for _, past := range t.history {
		printGuessResult(t.w, past)
	}
	if t.required != "" {
		fmt.Fprintf(t.w, "Contains: %s\n", strings.ToUpper(t.required))
	}
	if t.excluded != "" {
		fmt.Fprintf(t.w, "Ruled out: %s\n", strings.ToUpper(t.excluded))
	}
	fmt.Fprintf(t.w, "Try: %s\n", guess)
}

func (t *TerminalOutput) Known(required, excluded string) {
	t.required, t.excluded = required, excluded
}

func (t *TerminalOutput) Scored(result []gameModel.LetterResult) {
	t.history = append(t.history, result)
	printGuessResult(t.w, result)
}

func (t *TerminalOutput) InvalidFeedback(err error) {
	fmt.Fprintf(t.w, "Sorry, %v. Please try again.\n", err)
}

func (t *TerminalOutput) Won(word string, guesses int) {
	fmt.Fprintf(t.w, "Cracked it! The word was %s, found in %d guesses.\n", word, guesses)
}

func (t *TerminalOutput) OutOfGuesses(pattern string) {
	fmt.Fprintf(t.w, "Out of guesses at %s. We will get it next time.\n", pattern)
}

func (t *TerminalOutput) Stumped(pattern string) {
	fmt.Fprintf(t.w, "No words left that match %s. Is the word in the list?\n", pattern)
}

func (t *TerminalOutput) FatalError(err error) {
	fmt.Fprintf(t.w, "Error: %v\n", err)
}

func printGuessResult(w io.Writer, result []gameModel.LetterResult) {
	for _, r := range result {
		switch r.Score {
		case gameModel.Hit:
			fmt.Fprintf(w, "\033[1;32m%c\033[0m", unicode.ToUpper(r.Char)) // green
		case gameModel.Present:
			fmt.Fprintf(w, "\033[1;33m%c\033[0m", unicode.ToUpper(r.Char)) // yellow
		default:
			fmt.Fprintf(w, "\033[1;90m%c\033[0m", unicode.ToUpper(r.Char)) // dim grey
		}
	}
	fmt.Fprintln(w)
}

// RecordingOutput keeps what a game produced instead of printing it.
type RecordingOutput struct {
	Start    string
	Guesses  []string
	Required []string
	Excluded []string
	Results  [][]gameModel.LetterResult
	Invalid  []error
	Errors   []error
	Outcome  string // "won", "out of guesses" or "stumped"
	Pattern  string
	Finished bool
}

func (r *RecordingOutput) Welcome(start string) { r.Start = start }

func (r *RecordingOutput) Guess(_, _ int, guess string) { r.Guesses = append(r.Guesses, guess) }

func (r *RecordingOutput) Known(required, excluded string) {
	r.Required = append(r.Required, required)
	r.Excluded = append(r.Excluded, excluded)
}

func (r *RecordingOutput) Scored(result []gameModel.LetterResult) {
	r.Results = append(r.Results, result)
}

func (r *RecordingOutput) InvalidFeedback(err error) { r.Invalid = append(r.Invalid, err) }

func (r *RecordingOutput) Won(word string, _ int) {
	r.Outcome, r.Pattern, r.Finished = "won", word, true
}

func (r *RecordingOutput) OutOfGuesses(pattern string) {
	r.Outcome, r.Pattern, r.Finished = "out of guesses", pattern, true
}

func (r *RecordingOutput) Stumped(pattern string) {
	r.Outcome, r.Pattern, r.Finished = "stumped", pattern, true
}

func (r *RecordingOutput) FatalError(err error) { r.Errors = append(r.Errors, err) }
