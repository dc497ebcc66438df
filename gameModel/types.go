package gameModel

import (
	"strings"
	"time"
)

const WordLength = 5

// Score is the feedback signal for one letter of a guess.
type Score int

const (
	Miss Score = iota
	Present
	Hit
)

// Feedback symbols as typed by a player.
const (
	MissSymbol    = 'n'
	PresentSymbol = 'y'
	HitSymbol     = 'g'
)

// ExpectedFormat is an example of a well formed feedback line.
const ExpectedFormat = "gyngy"

// Symbol returns the letter a player types for s.
func (s Score) Symbol() byte {
	switch s {
	case Hit:
		return HitSymbol
	case Present:
		return PresentSymbol
	default:
		return MissSymbol
	}
}

// Feedback is the per-position signal for one guess.
type Feedback [WordLength]Score

func (f Feedback) String() string {
	var b strings.Builder
	for _, s := range f {
		b.WriteByte(s.Symbol())
	}
	return b.String()
}

type LetterResult struct {
	Char  rune  `json:"char"`
	Score Score `json:"score"`
}

// Results pairs each letter of guess with its feedback score.
func Results(guess string, fb Feedback) []LetterResult {
	res := make([]LetterResult, 0, WordLength)
	for i := 0; i < len(guess) && i < WordLength; i++ {
		res = append(res, LetterResult{Char: rune(guess[i]), Score: fb[i]})
	}
	return res
}

// GameResult is the record kept for every finished session.
type GameResult struct {
	ID       string    `json:"id"`
	Word     string    `json:"word"`
	Guesses  int       `json:"guesses"`
	Won      bool      `json:"won"`
	PlayedAt time.Time `json:"playedAt"`
}

// Stats summarises stored game results.
type Stats struct {
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"winRate"`
	MeanGuesses   float64 `json:"meanGuesses"`
	MedianGuesses float64 `json:"medianGuesses"`
}

// ForbiddenPosition is a letter known not to sit at Index.
type ForbiddenPosition struct {
	Char  string `json:"char"`
	Index int    `json:"index"`
}

type SessionState struct {
	ID           string              `json:"id"`
	Round        int                 `json:"round"`
	MaxRounds    int                 `json:"maxRounds"`
	CurrentGuess string              `json:"currentGuess"`
	Pattern      string              `json:"pattern"`
	Required     string              `json:"required"`
	Excluded     string              `json:"excluded"`
	Forbidden    []ForbiddenPosition `json:"forbidden"`
	History      [][]LetterResult    `json:"history"`
	Candidates   int                 `json:"candidates"`
	GameOver     bool                `json:"gameOver"`
	Won          bool                `json:"won"`
	Stumped      bool                `json:"stumped"`
	CreatedAt    string              `json:"createdAt"`
	LastActivity string              `json:"lastActivity"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type FeedbackResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Result       []LetterResult `json:"result,omitempty"`
	NextGuess    string         `json:"nextGuess,omitempty"`
	SessionState *SessionState  `json:"sessionState,omitempty"`
	GameOver     bool           `json:"gameOver"`
	Won          bool           `json:"won"`
}

type NewSessionResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	SessionState SessionState `json:"sessionState"`
}
