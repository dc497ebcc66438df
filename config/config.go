package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/tiggercwh/crackle/logging"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings shared by the CLI and the server
type Config struct {
	WordListPath      string
	StartingWordLimit int
	DBPath            string
	MaxGuesses        int
	ServerAddr        string
	LogLevel          logging.Level
	SessionLogPath    string
}

// Load reads .env files (the default ".env" when none are given; missing
// files are ignored) and then the environment. Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	level, ok := logging.ParseLevel(getEnvOrDefault("CRACKLE_LOG_LEVEL", "INFO"))
	if !ok {
		return nil, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, os.Getenv("CRACKLE_LOG_LEVEL"))
	}

	dbPath := os.Getenv("CRACKLE_DB")
	if dbPath == "" {
		var err error
		if dbPath, err = defaultDBPath(); err != nil {
			return nil, err
		}
	}

	return &Config{
		WordListPath:      getEnvOrDefault("CRACKLE_WORDLIST", "words.txt"),
		StartingWordLimit: getEnvIntOrDefault("CRACKLE_STARTING_LIMIT", 10),
		DBPath:            dbPath,
		MaxGuesses:        getEnvIntOrDefault("CRACKLE_MAX_GUESSES", 6),
		ServerAddr:        getEnvOrDefault("CRACKLE_ADDR", ":8080"),
		LogLevel:          level,
		SessionLogPath:    os.Getenv("CRACKLE_SESSION_LOG"),
	}, nil
}

func defaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "crackle", "crackle.db"), nil
}

// BindFlags registers command-line overrides on flags, defaulting to the
// values already loaded.
func (c *Config) BindFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.WordListPath, "wordlist", c.WordListPath, "Path to word list file (one word per line or CSV)")
	flags.IntVar(&c.StartingWordLimit, "limit", c.StartingWordLimit, "Pick the first guess among this many top ranked words")
	flags.StringVar(&c.DBPath, "db", c.DBPath, "Path to the sqlite database")
	flags.IntVar(&c.MaxGuesses, "max-guesses", c.MaxGuesses, "Maximum number of guesses per game")
	flags.StringVar(&c.ServerAddr, "addr", c.ServerAddr, "Address for the HTTP server")
	flags.StringVar(&c.SessionLogPath, "session-log", c.SessionLogPath, "Append session events to this file")
}

// Validate rejects settings no game can run with.
func (c *Config) Validate() error {
	switch {
	case c.StartingWordLimit <= 0:
		return fmt.Errorf("%w: starting word limit must be positive, got %d", ErrInvalidConfig, c.StartingWordLimit)
	case c.MaxGuesses <= 0:
		return fmt.Errorf("%w: max guesses must be positive, got %d", ErrInvalidConfig, c.MaxGuesses)
	case c.DBPath == "":
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	case c.ServerAddr == "":
		return fmt.Errorf("%w: server address is required", ErrInvalidConfig)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
