package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/tiggercwh/crackle/gameModel"
	"github.com/tiggercwh/crackle/session"
)

var serverURL = flag.String("server", "http://localhost:8080/api", "Base URL of the crackle API")

func makeRequest(method, url string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: not found", method, url)
	}
	return io.ReadAll(resp.Body)
}

func createSession(baseURL string) (*gameModel.SessionState, error) {
	respBody, err := makeRequest("POST", baseURL+"/session/new", nil)
	if err != nil {
		return nil, err
	}

	var response gameModel.NewSessionResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, err
	}

	if !response.Success {
		return nil, fmt.Errorf("failed to create session: %s", response.Message)
	}

	return &response.SessionState, nil
}

func submitFeedback(baseURL, sessionID, feedback string) (*gameModel.FeedbackResponse, error) {
	request := gameModel.FeedbackRequest{Feedback: feedback}
	respBody, err := makeRequest("POST", fmt.Sprintf("%s/session/%s/feedback", baseURL, sessionID), request)
	if err != nil {
		return nil, err
	}

	var response gameModel.FeedbackResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// play runs one remote session, reading feedback from input and showing
// progress on output, until the server reports the game over.
func play(ctx context.Context, baseURL string, input session.InputSource, output session.OutputSink) (*gameModel.SessionState, error) {
	state, err := createSession(baseURL)
	if err != nil {
		return nil, err
	}
	output.Welcome(state.CurrentGuess)

	for {
		if state.Round > 0 {
			output.Known(state.Required, state.Excluded)
		}
		output.Guess(state.Round+1, state.MaxRounds, state.CurrentGuess)
		line, err := input.Feedback(ctx, state.CurrentGuess)
		if err != nil {
			return state, err
		}

		response, err := submitFeedback(baseURL, state.ID, line)
		if err != nil {
			return state, err
		}
		if !response.Success {
			output.InvalidFeedback(errors.New(response.Message))
			if response.GameOver {
				return state, nil
			}
			continue
		}

		state = response.SessionState
		if response.Result != nil {
			output.Scored(response.Result)
		}

		if response.GameOver {
			switch {
			case state.Won:
				output.Won(state.CurrentGuess, state.Round)
			case state.Stumped:
				output.Stumped(state.Pattern)
			default:
				output.OutOfGuesses(state.Pattern)
			}
			return state, nil
		}
	}
}

func main() {
	flag.Parse()

	input := session.NewTerminalInput(os.Stdin, os.Stdout)
	output := session.NewTerminalOutput(os.Stdout)

	_, err := play(context.Background(), *serverURL, input, output)
	if errors.Is(err, session.ErrQuit) {
		fmt.Println("Exiting game")
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Printf("Make sure the server is running at %s\n", *serverURL)
		os.Exit(1)
	}
}
