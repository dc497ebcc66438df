package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"

	"github.com/tiggercwh/crackle/analyzer"
	"github.com/tiggercwh/crackle/config"
	"github.com/tiggercwh/crackle/corpus"
	"github.com/tiggercwh/crackle/logging"
	"github.com/tiggercwh/crackle/server"
	"github.com/tiggercwh/crackle/session"
	"github.com/tiggercwh/crackle/store"
)

var (
	answer    = flag.String("answer", "", "Play against this hidden word instead of reading feedback")
	seed      = flag.Bool("seed", false, "Rebuild the word table from the word list before playing")
	showStats = flag.Bool("stats", false, "Print stored game statistics and exit")
	serve     = flag.Bool("serve", false, "Serve the HTTP API instead of playing in the terminal")
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Default
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := ensureWords(ctx, cfg, st, log); err != nil {
		return err
	}

	if *showStats {
		return printStats(ctx, st)
	}

	top, err := st.TopWords(ctx, cfg.StartingWordLimit)
	if err != nil {
		return err
	}

	if *serve {
		pool, err := st.Words(ctx)
		if err != nil {
			return err
		}
		gs := server.NewGameServer(server.Config{
			Words:             pool,
			StartingWords:     top,
			StartingWordLimit: cfg.StartingWordLimit,
			MaxRounds:         cfg.MaxGuesses,
			Results:           st,
			Log:               log,
		})
		log.Info("Server starting on %s with %d words loaded", cfg.ServerAddr, len(pool))
		return http.ListenAndServe(cfg.ServerAddr, gs.Router())
	}

	sessionLog, err := openSessionLog(cfg.SessionLogPath)
	if err != nil {
		return err
	}
	defer sessionLog.Close()

	var input session.InputSource = session.NewTerminalInput(os.Stdin, os.Stdout)
	if *answer != "" {
		if err := analyzer.Validate(*answer); err != nil {
			return fmt.Errorf("answer: %w", err)
		}
		input = session.SimulatedInput{Answer: *answer}
	}

	game := session.New(session.Options{
		Input:      input,
		Output:     session.NewTerminalOutput(os.Stdout),
		Results:    st,
		Words:      st,
		MaxGuesses: cfg.MaxGuesses,
		Log:        log,
		SessionLog: sessionLog,
	})
	if err := game.Start(top); err != nil {
		return err
	}

	// a nil pool makes every round prefilter the stored words by pattern
	if _, err := game.Run(ctx, nil); err != nil {
		if errors.Is(err, session.ErrQuit) || errors.Is(err, context.Canceled) {
			fmt.Println("Exiting game")
			return nil
		}
		return err
	}
	fmt.Println("Game results stored successfully!")
	return nil
}

// ensureWords seeds the word table when asked to or when it is empty. A
// missing word list falls back to the built-in words.
func ensureWords(ctx context.Context, cfg *config.Config, st *store.Store, log *logging.Logger) error {
	n, err := st.CountWords(ctx)
	if err != nil {
		return err
	}
	if n > 0 && !*seed {
		return nil
	}

	words, err := corpus.LoadFile(cfg.WordListPath)
	if errors.Is(err, fs.ErrNotExist) && !*seed {
		log.Warn("word list %s not found, using built-in words", cfg.WordListPath)
		words, err = corpus.LoadFile("")
	}
	if err != nil {
		return err
	}
	_, err = corpus.Seed(ctx, st, words, os.Stderr, log)
	return err
}

func openSessionLog(path string) (*logging.SessionLog, error) {
	if path == "" {
		return nil, nil
	}
	return logging.OpenSessionLog(path)
}

func printStats(ctx context.Context, st *store.Store) error {
	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Games: %d  Wins: %d  Win rate: %.0f%%\n", stats.Games, stats.Wins, stats.WinRate*100)
	fmt.Printf("Guesses to win: mean %.2f, median %.1f\n", stats.MeanGuesses, stats.MedianGuesses)

	results, err := st.Results(ctx, 10)
	if err != nil {
		return err
	}
	for _, r := range results {
		outcome := "lost"
		if r.Won {
			outcome = "won"
		}
		fmt.Printf("%s  %s  %d guesses  %s\n", r.PlayedAt.Format("2006-01-02 15:04"), r.Word, r.Guesses, outcome)
	}
	return nil
}
