package engine

import (
	"sort"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/tiggercwh/crackle/gameModel"
)

// Position is a letter known not to sit at Index.
type Position struct {
	Char  byte
	Index int
}

// Constraints is a read-only snapshot of everything learned so far.
type Constraints struct {
	Current   string
	Resolved  [gameModel.WordLength]byte
	Forbidden map[Position]struct{}
	Required  map[byte]struct{}
	Excluded  map[byte]struct{}
}

// Allows reports whether word is still a possible answer.
func (c Constraints) Allows(word string) bool {
	if word == c.Current {
		return false
	}
	for r := range c.Required {
		if strings.IndexByte(word, r) < 0 {
			return false
		}
	}
	for i, r := range c.Resolved {
		if r != 0 && (i >= len(word) || word[i] != r) {
			return false
		}
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if _, ok := c.Forbidden[Position{Char: ch, Index: i}]; ok {
			return false
		}
		if _, ok := c.Excluded[ch]; ok {
			return false
		}
	}
	return true
}

// Filter keeps the words c allows, in pool order. The pool is not
// modified.
func Filter(pool []string, c Constraints) []string {
	out := make([]string, 0, len(pool))
	for _, w := range pool {
		if c.Allows(w) {
			out = append(out, w)
		}
	}
	return out
}

// RequiredLetters returns the required letters in ascending order.
func (c Constraints) RequiredLetters() string { return string(sortedKeys(c.Required)) }

// ExcludedLetters returns the excluded letters in ascending order.
func (c Constraints) ExcludedLetters() string { return string(sortedKeys(c.Excluded)) }

// ForbiddenPositions returns the forbidden positions ordered by index then letter.
func (c Constraints) ForbiddenPositions() []Position {
	out := make([]Position, 0, len(c.Forbidden))
	for p := range c.Forbidden {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Char < out[j].Char
	})
	return out
}

func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
