// Package store persists the scored word table and finished game results
// in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/montanaflynn/stats"
	_ "modernc.org/sqlite"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/gameModel"
)

const schema = `
CREATE TABLE IF NOT EXISTS words (
	word        TEXT PRIMARY KEY,
	probability REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS game_results (
	id         TEXT PRIMARY KEY,
	word       TEXT NOT NULL,
	guesses    INTEGER NOT NULL,
	win        INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

const memoryPath = ":memory:"

// fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrEmpty = errors.New("word table is empty")

// Store wraps the crackle database.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == memoryPath {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceWords swaps the word table for the given finalized words.
func (s *Store) ReplaceWords(ctx context.Context, words []analyzer.Word) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, `INSERT OR IGNORE INTO words (word, probability) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range words {
		score, err := w.Score()
		if err != nil {
			return fmt.Errorf("word %s: %w", w, err)
		}
		if _, err := stmt.ExecContext(ctx, w.String(), score); err != nil {
			return fmt.Errorf("insert word %s: %w", w, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountWords returns the size of the word table.
func (s *Store) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM words`); err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}

// Words returns every stored word in insertion order.
func (s *Store) Words(ctx context.Context) ([]string, error) {
	var words []string
	if err := s.db.SelectContext(ctx, &words, `SELECT word FROM words ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("select words: %w", err)
	}
	return words, nil
}

// TopWords returns the limit most probable words. ErrEmpty if there are none.
func (s *Store) TopWords(ctx context.Context, limit int) ([]string, error) {
	var words []string
	err := s.db.SelectContext(ctx, &words,
		`SELECT word FROM words ORDER BY probability DESC, rowid LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select top words: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}

// FilterWords returns the words matching a pattern such as "a__l_", where
// '_' matches any single letter.
func (s *Store) FilterWords(ctx context.Context, pattern string) ([]string, error) {
	var words []string
	err := s.db.SelectContext(ctx, &words,
		`SELECT word FROM words WHERE word LIKE ? ORDER BY rowid`, pattern)
	if err != nil {
		return nil, fmt.Errorf("filter words %q: %w", pattern, err)
	}
	return words, nil
}

type resultRow struct {
	ID        string `db:"id"`
	Word      string `db:"word"`
	Guesses   int    `db:"guesses"`
	Win       bool   `db:"win"`
	CreatedAt string `db:"created_at"`
}

// SaveResult records a finished game. A missing ID or timestamp is filled in.
func (s *Store) SaveResult(ctx context.Context, r gameModel.GameResult) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.PlayedAt.IsZero() {
		r.PlayedAt = time.Now()
	}
	row := resultRow{
		ID:        r.ID,
		Word:      r.Word,
		Guesses:   r.Guesses,
		Win:       r.Won,
		CreatedAt: r.PlayedAt.UTC().Format(timeLayout),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO game_results (id, word, guesses, win, created_at)
		 VALUES (:id, :word, :guesses, :win, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Results returns up to limit results, newest first.
func (s *Store) Results(ctx context.Context, limit int) ([]gameModel.GameResult, error) {
	var rows []resultRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, word, guesses, win, created_at FROM game_results
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	out := make([]gameModel.GameResult, 0, len(rows))
	for _, row := range rows {
		playedAt, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of result %s: %w", row.ID, err)
		}
		out = append(out, gameModel.GameResult{
			ID:       row.ID,
			Word:     row.Word,
			Guesses:  row.Guesses,
			Won:      row.Win,
			PlayedAt: playedAt,
		})
	}
	return out, nil
}

// Stats summarises every stored result. Mean and median guesses are taken
// over won games only.
func (s *Store) Stats(ctx context.Context) (gameModel.Stats, error) {
	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT guesses, win FROM game_results`); err != nil {
		return gameModel.Stats{}, fmt.Errorf("select results: %w", err)
	}

	var st gameModel.Stats
	var guesses stats.Float64Data
	for _, row := range rows {
		st.Games++
		if row.Win {
			st.Wins++
			guesses = append(guesses, float64(row.Guesses))
		}
	}
	if st.Games > 0 {
		st.WinRate = float64(st.Wins) / float64(st.Games)
	}
	if len(guesses) == 0 {
		return st, nil
	}

	var err error
	if st.MeanGuesses, err = stats.Mean(guesses); err != nil {
		return st, fmt.Errorf("mean guesses: %w", err)
	}
	if st.MedianGuesses, err = stats.Median(guesses); err != nil {
		return st, fmt.Errorf("median guesses: %w", err)
	}
	return st, nil
}
