package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/rxtodo-go/internal/taskedit"
)

// AlertPresenter shows editor alerts as a modal prompt inside the TUI.
type AlertPresenter struct {
	requests chan alertRequest
}

type alertRequest struct {
	ctx   context.Context
	alert taskedit.Alert
	reply chan taskedit.AlertAction
}

type alertMsg struct {
	req alertRequest
}

// NewAlertPresenter creates a presenter. Its alerts are shown by the model
// it is passed to.
func NewAlertPresenter() *AlertPresenter {
	return &AlertPresenter{requests: make(chan alertRequest)}
}

// Present implements taskedit.AlertPresenter. It never blocks; the alert is
// handed to the model in the background and dropped if ctx ends first.
func (p *AlertPresenter) Present(ctx context.Context, alert taskedit.Alert) <-chan taskedit.AlertAction {
	reply := make(chan taskedit.AlertAction, 1)
	req := alertRequest{ctx: ctx, alert: alert, reply: reply}
	go func() {
		select {
		case p.requests <- req:
		case <-ctx.Done():
			close(reply)
		}
	}()
	return reply
}

func (p *AlertPresenter) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-p.requests:
			return alertMsg{req: req}
		case <-ctx.Done():
			return nil
		}
	}
}

// resolve answers the alert. A negative index dismisses it without an answer.
func (r alertRequest) resolve(index int) {
	if index >= 0 && index < len(r.alert.Actions) {
		r.reply <- r.alert.Actions[index]
	}
	close(r.reply)
}

func (r alertRequest) expired() bool {
	return r.ctx.Err() != nil
}
