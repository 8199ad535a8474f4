package tui

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/session"
)

// Run shows the full-screen chat until the user quits or ctx is done.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	p := tea.NewProgram(New(ctx, sess, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// RunLines reads one message per line from in and writes replies to out.
// Lines starting with a slash are commands: /reset, /state and /quit. It
// returns as soon as ctx is done, even while waiting for input.
func RunLines(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer, opts Options) error {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "CEREBRAS_API_KEY"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)

	for {
		var raw string
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("could not read input: %w", err)
				}
				return nil
			}
			raw = line
		}

		switch strings.TrimSpace(raw) {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(out, "Session reset.")
			continue
		case "/state":
			if sess.Variant() != session.VariantTutor {
				fmt.Fprintln(out, "The chat variant has no learning state.")
				continue
			}
			state, err := json.MarshalIndent(sess.LearningState(), "", "  ")
			if err != nil {
				return fmt.Errorf("could not encode learning state: %w", err)
			}
			fmt.Fprintln(out, string(state))
			continue
		}

		reply, err := sess.Submit(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "An error occurred: %v\n", err)
			var completionErr *completion.CompletionError
			if errors.As(err, &completionErr) {
				fmt.Fprintf(out, "Please make sure your %s is set in the environment variables.\n", opts.APIKeyEnv)
			}
			continue
		}

		fmt.Fprintln(out, reply)
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. readErr receives the scanner error once lines is closed.
func readLines(ctx context.Context, in io.Reader) (lines <-chan string, readErr <-chan error) {
	lineCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lineCh)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lineCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	return lineCh, errCh
}
