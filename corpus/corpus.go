// Package corpus loads candidate word lists and seeds the word table.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/logging"
	"github.com/tiggercwh/crackle/store"
)

var ErrNoWords = errors.New("no words found in the word list")

// DefaultWords is used when no word list is configured.
var DefaultWords = []string{
	"crane", "slate", "fling", "grasp", "thing",
	"blame", "pride", "slope", "drink", "plant",
	"hello", "world", "quite", "fancy", "fresh",
	"panic", "crazy", "buggy",
}

// Load reads words from r. Lines may hold one word or several comma
// separated ones. Words are trimmed and lower-cased, duplicates dropped,
// first occurrence order kept. No length check is made here.
func Load(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[string]bool)
	var words []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading word list: %w", err)
		}
		for _, word := range record {
			word = strings.TrimSpace(strings.ToLower(word))
			if word == "" || seen[word] {
				continue
			}
			seen[word] = true
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// LoadFile loads the word list at path, or DefaultWords if path is empty.
func LoadFile(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultWords...), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list file: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Analyze ingests words into a finalized analyzer, reporting progress to
// progress (nil for none). Invalid words are logged and skipped.
func Analyze(words []string, progress io.Writer, log *logging.Logger) (*analyzer.Analyzer, int) {
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(words),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("analyzing words"),
		progressbar.OptionClearOnFinish(),
	)

	a := analyzer.New()
	skipped := 0
	for _, w := range words {
		if err := a.Ingest(w); err != nil {
			log.Warn("skipping word list entry: %v", err)
			skipped++
		}
		bar.Add(1)
	}
	bar.Finish()
	a.Finalize()
	return a, skipped
}

// Seed rebuilds the store's word table from words and returns how many were
// stored.
func Seed(ctx context.Context, st *store.Store, words []string, progress io.Writer, log *logging.Logger) (int, error) {
	a, skipped := Analyze(words, progress, log)
	if a.Len() == 0 {
		return 0, ErrNoWords
	}
	if err := st.ReplaceWords(ctx, a.Words()); err != nil {
		return 0, err
	}
	log.Info("seeded %d words (%d skipped)", a.Len(), skipped)
	return a.Len(), nil
}
