package taskedit

import "context"

// AlertActionStyle hints how an alert action is rendered.
type AlertActionStyle int

const (
	StyleDefault AlertActionStyle = iota
	StyleCancel
	StyleDestructive
)

// AlertAction is a button of the cancel confirmation alert.
type AlertAction int

const (
	// Leave discards the changes and closes the editor.
	Leave AlertAction = iota
	// Stay keeps the editor open.
	Stay
)

// Title returns the button label.
func (a AlertAction) Title() string {
	switch a {
	case Leave:
		return "Leave"
	case Stay:
		return "Stay"
	}
	return ""
}

// Style returns the button style.
func (a AlertAction) Style() AlertActionStyle {
	switch a {
	case Leave:
		return StyleDestructive
	case Stay:
		return StyleDefault
	}
	return StyleDefault
}

// Alert is a modal question with a fixed set of answers.
type Alert struct {
	Title   string
	Message string
	Actions []AlertAction
}

// cancelAlert is shown when the user cancels an editor with changes.
var cancelAlert = Alert{
	Title:   "Really?",
	Message: "All changes will be lost",
	Actions: []AlertAction{Leave, Stay},
}

// AlertPresenter shows alerts. The returned channel delivers the chosen
// action at most once and is then closed. Closing it without a value means
// the alert was dismissed without an answer, for example because ctx was
// cancelled.
type AlertPresenter interface {
	Present(ctx context.Context, alert Alert) <-chan AlertAction
}

// AlertPresenterFunc adapts a function to AlertPresenter.
type AlertPresenterFunc func(ctx context.Context, alert Alert) <-chan AlertAction

// Present implements AlertPresenter.
func (f AlertPresenterFunc) Present(ctx context.Context, alert Alert) <-chan AlertAction {
	return f(ctx, alert)
}
