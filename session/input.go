package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tiggercwh/crackle/engine"
)

const exitCommand = "exit"

// TerminalInput reads feedback lines typed by the player.
type TerminalInput struct {
	scanner *bufio.Scanner
	prompt  io.Writer
}

// NewTerminalInput reads from r and writes prompts to prompt.
func NewTerminalInput(r io.Reader, prompt io.Writer) *TerminalInput {
	return &TerminalInput{scanner: bufio.NewScanner(r), prompt: prompt}
}

// Feedback returns ErrQuit when the player types "exit" or input ends.
func (t *TerminalInput) Feedback(ctx context.Context, guess string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(t.prompt, "Feedback for %s: ", strings.ToUpper(guess))
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", fmt.Errorf("read feedback: %w", err)
		}
		return "", ErrQuit
	}
	line := strings.ToLower(strings.TrimSpace(t.scanner.Text()))
	if line == exitCommand {
		return "", ErrQuit
	}
	return line, nil
}

// SimulatedInput answers for a player who knows the hidden word.
type SimulatedInput struct {
	Answer string
}

func (s SimulatedInput) Feedback(ctx context.Context, guess string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return engine.Evaluate(guess, s.Answer).String(), nil
}
