// Package analyzer ranks candidate words by positional letter frequency.
//
// Every (letter, position) pair observed in the ingested pool gets an integer
// percentage: how many pool words carry that letter at that position, floor
// divided by the pool size. A word's score is the sum of its five percentages
// divided by 100, so it is only comparable against words scored by the same
// build of the model.
package analyzer

import (
	"sort"

	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/logging"
)

const WordLength = gameModel.WordLength

type statKey struct {
	char byte
	pos  int
}

// LetterStat is the frequency of one letter at one position.
type LetterStat struct {
	Char        byte
	Position    int
	Frequency   int
	Probability int
}

// Word is an ingested word and its score.
type Word struct {
	letters [WordLength]byte
	score   float64
	scored  bool
}

func (w Word) String() string { return string(w.letters[:]) }

// Score returns the total score, or ErrProbabilitiesNotFinalized if the
// owning analyzer had not been finalized when this copy was taken.
func (w Word) Score() (float64, error) {
	if !w.scored {
		return 0, ErrProbabilitiesNotFinalized
	}
	return w.score, nil
}

// Analyzer accumulates positional letter statistics for a pool of words.
type Analyzer struct {
	stats     map[statKey]*LetterStat
	words     []Word
	finalized bool
}

func New() *Analyzer {
	return &Analyzer{stats: make(map[statKey]*LetterStat)}
}

// FromWords ingests every word, logging and skipping the ones that fail
// validation. It returns the analyzer and the number of skipped entries.
func FromWords(words []string, log *logging.Logger) (*Analyzer, int) {
	a := New()
	skipped := 0
	for _, w := range words {
		if err := a.Ingest(w); err != nil {
			log.Warn("skipping corpus entry: %v", err)
			skipped++
		}
	}
	return a, skipped
}

// Validate checks that word is exactly five ASCII letters.
func Validate(word string) error {
	if len(word) != WordLength {
		return &InvalidWordLengthError{Word: word, Length: len(word)}
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return &InvalidWordCharacterError{Word: word, Char: c}
		}
	}
	return nil
}

// Ingest validates word and adds it to the pool. A rejected word leaves the
// analyzer untouched.
func (a *Analyzer) Ingest(word string) error {
	if err := Validate(word); err != nil {
		return err
	}
	var w Word
	for i := 0; i < WordLength; i++ {
		c := word[i]
		w.letters[i] = c
		k := statKey{char: c, pos: i}
		st, ok := a.stats[k]
		if !ok {
			st = &LetterStat{Char: c, Position: i}
			a.stats[k] = st
		}
		st.Frequency++
	}
	a.words = append(a.words, w)
	a.finalized = false
	return nil
}

// Finalize computes letter probabilities and word scores. Calling it again
// without new ingestion is a no-op.
func (a *Analyzer) Finalize() {
	if a.finalized {
		return
	}
	var totals [WordLength]int
	for _, st := range a.stats {
		totals[st.Position] += st.Frequency
	}
	for _, st := range a.stats {
		if total := totals[st.Position]; total > 0 {
			st.Probability = st.Frequency * 100 / total
		}
	}
	for i := range a.words {
		a.words[i].score = a.sum(a.words[i].letters)
		a.words[i].scored = true
	}
	a.finalized = true
}

func (a *Analyzer) sum(letters [WordLength]byte) float64 {
	total := 0
	for i, c := range letters {
		if st, ok := a.stats[statKey{char: c, pos: i}]; ok {
			total += st.Probability
		}
	}
	return float64(total) / 100.0
}

func (a *Analyzer) Finalized() bool { return a.finalized }

// Len is the number of ingested words.
func (a *Analyzer) Len() int { return len(a.words) }

// Words returns a copy of the pool in ingestion order.
func (a *Analyzer) Words() []Word {
	out := make([]Word, len(a.words))
	copy(out, a.words)
	return out
}

// Stat looks up the statistic for char at pos.
func (a *Analyzer) Stat(char byte, pos int) (LetterStat, bool) {
	st, ok := a.stats[statKey{char: char, pos: pos}]
	if !ok {
		return LetterStat{}, false
	}
	return *st, true
}

// Score scores any five letter word against the current statistics.
// Letters never seen at a position contribute nothing.
func (a *Analyzer) Score(word string) (float64, error) {
	if !a.finalized {
		return 0, ErrProbabilitiesNotFinalized
	}
	if err := Validate(word); err != nil {
		return 0, err
	}
	var letters [WordLength]byte
	copy(letters[:], word)
	return a.sum(letters), nil
}

// BestWord returns the highest scoring word, finalizing first if needed.
// Ties go to the word ingested first. ok is false for an empty pool.
func (a *Analyzer) BestWord() (best Word, ok bool) {
	a.Finalize()
	for _, w := range a.words {
		if !ok || w.score > best.score {
			best, ok = w, true
		}
	}
	return best, ok
}

// Ranked returns up to n words ordered by descending score, ingestion order
// within ties. n <= 0 returns the whole pool.
func (a *Analyzer) Ranked(n int) ([]Word, error) {
	if !a.finalized {
		return nil, ErrProbabilitiesNotFinalized
	}
	ranked := a.Words()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
