package engine

import (
	"strings"

	"github.com/tiggercwh/crackle/gameModel"
)

// ParseFeedback turns a line such as "gyngy" into a Feedback. Case and
// surrounding whitespace are ignored.
func ParseFeedback(s string) (gameModel.Feedback, error) {
	var fb gameModel.Feedback
	in := strings.ToLower(strings.TrimSpace(s))
	if len(in) != gameModel.WordLength {
		return fb, &InvalidInputError{Input: in, Pos: -1}
	}
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case gameModel.HitSymbol:
			fb[i] = gameModel.Hit
		case gameModel.PresentSymbol:
			fb[i] = gameModel.Present
		case gameModel.MissSymbol:
			fb[i] = gameModel.Miss
		default:
			return gameModel.Feedback{}, &InvalidInputError{Input: in, Pos: i}
		}
	}
	return fb, nil
}

// Evaluate scores guess against answer the way the game does: exact matches
// first, then letters present elsewhere, each answer letter used at most once.
func Evaluate(guess, answer string) gameModel.Feedback {
	var fb gameModel.Feedback
	answerCounts := make(map[byte]int)

	// First pass: identify hits
	for i := 0; i < gameModel.WordLength; i++ {
		if guess[i] == answer[i] {
			fb[i] = gameModel.Hit
		} else {
			answerCounts[answer[i]]++
		}
	}

	// Second pass: identify presents
	for i := 0; i < gameModel.WordLength; i++ {
		if fb[i] == gameModel.Hit {
			continue
		}
		if answerCounts[guess[i]] > 0 {
			fb[i] = gameModel.Present
			answerCounts[guess[i]]--
		} else {
			fb[i] = gameModel.Miss
		}
	}
	return fb
}
