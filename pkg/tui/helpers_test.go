package tui_test

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/llm"
)

type scriptedClient struct {
	replies []string
	fail    bool
}

func (c *scriptedClient) Complete(context.Context, *string, []llm.Turn, string) (string, error) {
	if c.fail {
		return "", &completion.CompletionError{Err: errors.New("no route to host")}
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

// drain runs a command and any batch it expands to, collecting the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, drain(c)...)
	}
	return msgs
}
