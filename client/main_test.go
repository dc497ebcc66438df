package main

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"

	"github.com/tiggercwh/crackle/logging"
	"github.com/tiggercwh/crackle/server"
	"github.com/tiggercwh/crackle/session"
)

type scripted []string

func (s *scripted) Feedback(_ context.Context, _ string) (string, error) {
	if len(*s) == 0 {
		return "", session.ErrQuit
	}
	line := (*s)[0]
	*s = (*s)[1:]
	return line, nil
}

func newTestAPI(t *testing.T) string {
	t.Helper()
	gs := server.NewGameServer(server.Config{
		Words:         []string{"crane", "slate", "fling", "grasp", "thing", "blame", "pride", "slope", "drink", "plant"},
		StartingWords: []string{"crane"},
		Rand:          rand.New(rand.NewSource(1)),
		Log:           logging.Discard(),
	})
	srv := httptest.NewServer(gs.Router())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestPlayAgainstServer(t *testing.T) {
	baseURL := newTestAPI(t)
	out := &session.RecordingOutput{}

	state, err := play(context.Background(), baseURL, session.SimulatedInput{Answer: "drink"}, out)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !state.Won || state.CurrentGuess != "drink" {
		t.Errorf("Expected drink to be solved, got %+v", state)
	}
	if out.Start != "crane" || out.Outcome != "won" {
		t.Errorf("unexpected output %+v", out)
	}
	if len(out.Results) != state.Round {
		t.Errorf("Expected %d scored rounds, got %d", state.Round, len(out.Results))
	}
	if len(out.Required) != state.Round-1 || len(out.Excluded) != state.Round-1 {
		t.Errorf("Expected known letters before each of %d later guesses, got %d", state.Round-1, len(out.Required))
	}
}

func TestPlayRetriesRejectedFeedback(t *testing.T) {
	baseURL := newTestAPI(t)
	out := &session.RecordingOutput{}
	input := &scripted{"bad", "ggggg"}

	state, err := play(context.Background(), baseURL, input, out)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(out.Invalid) != 1 {
		t.Errorf("Expected 1 rejected line, got %d", len(out.Invalid))
	}
	if !state.Won || state.Round != 1 {
		t.Errorf("unexpected final state %+v", state)
	}
}

func TestPlayQuit(t *testing.T) {
	baseURL := newTestAPI(t)
	input := &scripted{}

	_, err := play(context.Background(), baseURL, input, &session.RecordingOutput{})
	if err != session.ErrQuit {
		t.Errorf("Expected ErrQuit, got %v", err)
	}
}

func TestCreateSessionServerDown(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	if _, err := createSession(url + "/api"); err == nil {
		t.Error("Expected an error when the server is unreachable")
	}
}
