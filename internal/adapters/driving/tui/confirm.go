package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/messages"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// ModalConfirmer answers lifecycle confirmations with a TUI modal. Confirm
// blocks its caller, which always runs inside a tea.Cmd goroutine, until
// the operator replies.
type ModalConfirmer struct {
	requests chan messages.ConfirmRequested
}

var _ driven.Confirmer = (*ModalConfirmer)(nil)

// NewModalConfirmer creates a confirmer with no pending request.
func NewModalConfirmer() *ModalConfirmer {
	return &ModalConfirmer{requests: make(chan messages.ConfirmRequested)}
}

// Confirm hands prompt to the app and waits for the reply.
func (c *ModalConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case c.requests <- messages.ConfirmRequested{Prompt: prompt, Reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Next waits for the following confirmation request. It yields nil once
// ctx is done.
func (c *ModalConfirmer) Next(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-c.requests:
			return req
		case <-ctx.Done():
			return nil
		}
	}
}
