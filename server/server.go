// Package server hosts solver sessions over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tiggercwh/crackle/corpus"
	"github.com/tiggercwh/crackle/engine"
	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/logging"
	"github.com/tiggercwh/crackle/session"
)

// ResultStore keeps finished games. *store.Store satisfies it.
type ResultStore interface {
	SaveResult(ctx context.Context, r gameModel.GameResult) error
	Stats(ctx context.Context) (gameModel.Stats, error)
}

// DefaultStartingWordLimit is how many of the best ranked words are kept as
// starting words when none are configured.
const DefaultStartingWordLimit = 10

type Config struct {
	Words             []string    // candidate pool
	StartingWords     []string    // first guesses are drawn from these
	StartingWordLimit int         // ranked fallback size when StartingWords is empty
	MaxRounds         int         // session.DefaultMaxGuesses when zero
	Results           ResultStore // optional
	Rand              *rand.Rand  // optional
	Log               *logging.Logger
}

type solverSession struct {
	mu           sync.Mutex
	game         *session.Session
	lastActivity time.Time
}

type GameServer struct {
	sessions map[string]*solverSession
	mutex    sync.RWMutex
	cfg      Config
	upgrader websocket.Upgrader
}

func NewGameServer(cfg Config) *GameServer {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = session.DefaultMaxGuesses
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Log == nil {
		cfg.Log = logging.Default
	}
	if len(cfg.StartingWords) == 0 {
		cfg.StartingWords = rankedStartingWords(cfg)
	}
	return &GameServer{
		sessions: make(map[string]*solverSession),
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// rankedStartingWords picks the best scoring words of the pool.
func rankedStartingWords(cfg Config) []string {
	limit := cfg.StartingWordLimit
	if limit <= 0 {
		limit = DefaultStartingWordLimit
	}
	a, _ := corpus.Analyze(cfg.Words, io.Discard, cfg.Log)
	ranked, err := a.Ranked(limit)
	if err != nil {
		cfg.Log.Warn("ranking starting words: %v", err)
		return cfg.Words
	}
	words := make([]string, 0, len(ranked))
	for _, w := range ranked {
		words = append(words, w.String())
	}
	return words
}

// Router wires the API routes.
func (gs *GameServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/session/new", gs.handleNewSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionID}/feedback", gs.handleFeedback).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionID}/ws", gs.handleWebsocket).Methods("GET")
	r.HandleFunc("/api/session/{sessionID}", gs.handleGetSession).Methods("GET")
	r.HandleFunc("/api/stats", gs.handleStats).Methods("GET")
	return r
}

func (gs *GameServer) createSession() (*solverSession, error) {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	game := session.New(session.Options{
		Results:    gs.cfg.Results,
		MaxGuesses: gs.cfg.MaxRounds,
		// the shared source is only touched under gs.mutex
		Rand: rand.New(rand.NewSource(gs.cfg.Rand.Int63())),
		Log:  gs.cfg.Log,
	})
	if err := game.Start(gs.cfg.StartingWords); err != nil {
		return nil, err
	}
	sess := &solverSession{game: game, lastActivity: time.Now()}
	gs.sessions[game.ID] = sess
	gs.cfg.Log.Info("created session %s starting with %s", game.ID, game.Engine().CurrentGuess())
	return sess, nil
}

func (gs *GameServer) getSession(sessionID string) (*solverSession, bool) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()
	sess, exists := gs.sessions[sessionID]
	return sess, exists
}

// state snapshots sess. The caller holds sess.mu.
func (gs *GameServer) state(sess *solverSession) gameModel.SessionState {
	game := sess.game
	e := game.Engine()
	candidates := 0
	if !game.Done() {
		candidates = len(e.Candidates(gs.cfg.Words))
	}
	c := e.Constraints()
	forbidden := make([]gameModel.ForbiddenPosition, 0, len(c.Forbidden))
	for _, p := range c.ForbiddenPositions() {
		forbidden = append(forbidden, gameModel.ForbiddenPosition{Char: string(p.Char), Index: p.Index})
	}
	return gameModel.SessionState{
		ID:           game.ID,
		Round:        e.Rounds(),
		MaxRounds:    game.MaxGuesses(),
		CurrentGuess: e.CurrentGuess(),
		Pattern:      e.Pattern(),
		Required:     c.RequiredLetters(),
		Excluded:     c.ExcludedLetters(),
		Forbidden:    forbidden,
		History:      game.History(),
		Candidates:   candidates,
		GameOver:     game.Done(),
		Won:          game.Outcome() == session.Won,
		Stumped:      game.Outcome() == session.Stumped,
		CreatedAt:    game.StartedAt.Format(time.RFC3339),
		LastActivity: sess.lastActivity.Format(time.RFC3339),
	}
}

// applyFeedback runs one round on sess and returns the response together
// with the HTTP status it should be sent with.
func (gs *GameServer) applyFeedback(ctx context.Context, sess *solverSession, line string) (gameModel.FeedbackResponse, int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.game.Done() {
		state := gs.state(sess)
		return gameModel.FeedbackResponse{
			Success:      false,
			Message:      "Game is already over",
			SessionState: &state,
			GameOver:     true,
			Won:          state.Won,
		}, http.StatusConflict
	}

	// a finished game is saved even if the client has gone away
	round, err := sess.game.Step(context.WithoutCancel(ctx), line, gs.cfg.Words)
	if errors.Is(err, engine.ErrInvalidInputFormat) {
		return gameModel.FeedbackResponse{
			Success: false,
			Message: err.Error(),
		}, http.StatusBadRequest
	}
	sess.lastActivity = time.Now()
	state := gs.state(sess)
	if err != nil {
		gs.cfg.Log.Error("session %s: %v", sess.game.ID, err)
		return gameModel.FeedbackResponse{
			Success:      false,
			Message:      err.Error(),
			SessionState: &state,
			GameOver:     state.GameOver,
			Won:          state.Won,
		}, http.StatusInternalServerError
	}

	msg := "Feedback processed successfully"
	switch round.Outcome {
	case session.Won:
		msg = fmt.Sprintf("Solved in %d guesses", state.Round)
	case session.OutOfGuesses:
		msg = "Out of guesses"
	case session.Stumped:
		msg = "No candidate words left"
	}
	return gameModel.FeedbackResponse{
		Success:      true,
		Message:      msg,
		Result:       round.Result,
		NextGuess:    round.Next,
		SessionState: &state,
		GameOver:     state.GameOver,
		Won:          state.Won,
	}, http.StatusOK
}

func setHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (gs *GameServer) handleNewSession(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "POST, OPTIONS")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	sess, err := gs.createSession()
	if err != nil {
		gs.cfg.Log.Error("create session: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, gameModel.NewSessionResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	sess.mu.Lock()
	state := gs.state(sess)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, gameModel.NewSessionResponse{
		Success:      true,
		Message:      "New session created successfully",
		SessionState: state,
	})
}

func (gs *GameServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "POST, OPTIONS")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	var req gameModel.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess, exists := gs.getSession(mux.Vars(r)["sessionID"])
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	response, status := gs.applyFeedback(r.Context(), sess, req.Feedback)
	writeJSON(w, status, response)
}

func (gs *GameServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "GET")
	sess, exists := gs.getSession(mux.Vars(r)["sessionID"])
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	sess.mu.Lock()
	state := gs.state(sess)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (gs *GameServer) handleStats(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "GET")
	if gs.cfg.Results == nil {
		http.Error(w, "No result store configured", http.StatusServiceUnavailable)
		return
	}
	st, err := gs.cfg.Results.Stats(r.Context())
	if err != nil {
		gs.cfg.Log.Error("stats: %v", err)
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleWebsocket plays a session over a websocket: each text frame is a
// feedback line and is answered with a FeedbackResponse frame. The socket is
// closed once the game is over.
func (gs *GameServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess, exists := gs.getSession(mux.Vars(r)["sessionID"])
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	conn, err := gs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.cfg.Log.Warn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess.mu.Lock()
	state := gs.state(sess)
	sess.mu.Unlock()
	hello := gameModel.FeedbackResponse{
		Success:      true,
		Message:      "Connected",
		NextGuess:    state.CurrentGuess,
		SessionState: &state,
		GameOver:     state.GameOver,
		Won:          state.Won,
	}
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	gameOver := hello.GameOver
	for !gameOver {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				gs.cfg.Log.Warn("session %s websocket: %v", sess.game.ID, err)
			}
			return
		}
		response, _ := gs.applyFeedback(r.Context(), sess, string(msg))
		if err := conn.WriteJSON(response); err != nil {
			return
		}
		gameOver = response.GameOver
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
}
