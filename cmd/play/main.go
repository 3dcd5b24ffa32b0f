// Package main provides the terminal client for RiddleYu.
// It fetches a puzzle from a running server or a local JSON file and
// drives the session state machine through a Bubble Tea UI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/riddleyu/go-server/internal/puzzle"
)

var (
	serverURL  string
	playDate   string
	puzzleFile string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "play",
		Short:         "Play the daily RiddleYu puzzle in your terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlay,
	}
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:5175", "riddleyu server base URL")
	rootCmd.Flags().StringVar(&playDate, "date", "", "puzzle date YYYY-MM-DD (default: server's today)")
	rootCmd.Flags().StringVar(&puzzleFile, "file", "", "load the puzzle from a local JSON file instead of the server")
	return rootCmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	p, err := loadPuzzle()
	if err != nil {
		return err
	}
	prog := tea.NewProgram(newModel(p), tea.WithAltScreen())
	_, err = prog.Run()
	return err
}

func loadPuzzle() (*puzzle.Puzzle, error) {
	var raw []byte
	var err error
	if puzzleFile != "" {
		raw, err = os.ReadFile(puzzleFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", puzzleFile, err)
		}
	} else {
		raw, err = fetchPuzzle()
		if err != nil {
			return nil, err
		}
	}
	var p puzzle.Puzzle
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode puzzle: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func fetchPuzzle() ([]byte, error) {
	url := serverURL + "/puzzle"
	if playDate != "" {
		url += "?date=" + playDate
	}
	client := &http.Client{Timeout: 2 * time.Minute} // first fetch of the day may generate
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch puzzle: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("today's puzzle is not available yet, try again shortly")
	default:
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, string(body))
	}
}
