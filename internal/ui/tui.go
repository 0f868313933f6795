// Package ui provides the terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/rxtodo-go/internal/reactor"
	"github.com/nibzard/rxtodo-go/internal/task"
	"github.com/nibzard/rxtodo-go/internal/taskedit"
	"github.com/nibzard/rxtodo-go/internal/tasklist"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	logger *log.Logger
}

// WithLogger sets the logger handed to the reactors.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// RunTUI runs the task list UI until the user quits or ctx is done.
func RunTUI(ctx context.Context, service tasklist.TaskService, opts ...TUIOption) error {
	c := &tuiConfig{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := reactor.NewLoop()
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx)
	}()

	alerts := NewAlertPresenter()
	list := tasklist.New(loop, service,
		tasklist.WithLogger(c.logger),
		tasklist.WithAlertPresenter(alerts),
	)
	model := NewModel(ctx, loop, list, alerts)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()

	cancel()
	if lerr := <-loopErr; lerr != nil && !errors.Is(lerr, context.Canceled) {
		c.logger.Error("reactor loop stopped", "err", lerr)
	}
	if err != nil && parent.Err() != nil {
		return parent.Err()
	}
	return err
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	memoStyle     = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	editingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	labelStyle    = lipgloss.NewStyle().Width(7)
	alertBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(0, 2)
)

// Model is the bubbletea model for the task list and its editor.
type Model struct {
	ctx    context.Context
	loop   *reactor.Loop
	list   *tasklist.Reactor
	store  *tasklist.Store
	alerts *AlertPresenter
	watch  *watcher

	cursor   int
	showHelp bool
	editor   *editor
	alert    *alertRequest
}

type stateMsg struct{}

// NewModel creates a model for list running on loop and starts loading
// the tasks.
func NewModel(ctx context.Context, loop *reactor.Loop, list *tasklist.Reactor, alerts *AlertPresenter) *Model {
	m := &Model{
		ctx:    ctx,
		loop:   loop,
		list:   list,
		store:  list.NewStore(ctx),
		alerts: alerts,
		watch:  newWatcher(),
	}
	m.watch.watchList(m.store)
	m.store.Send(tasklist.Refresh{})
	return m
}

// Close stops observing and closes the stores owned by the model.
func (m *Model) Close() {
	if m.alert != nil {
		m.alert.resolve(-1)
		m.alert = nil
	}
	m.closeEditor()
	m.watch.stop()
	m.store.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForState(m.ctx, m.watch.signal)}
	if m.alerts != nil {
		cmds = append(cmds, m.alerts.wait(m.ctx))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.alert != nil && m.alert.expired() {
		m.alert = nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.alert != nil:
			return m.updateAlert(msg)
		case m.editor != nil:
			return m.updateEditor(msg)
		default:
			return m.updateList(msg)
		}

	case stateMsg:
		if m.editor != nil && m.editor.store.State().IsDismissed {
			m.closeEditor()
		}
		m.clampCursor()
		return m, waitForState(m.ctx, m.watch.signal)

	case alertMsg:
		if !msg.req.expired() {
			m.alert = &msg.req
		} else {
			msg.req.resolve(-1)
		}
		return m, m.alerts.wait(m.ctx)
	}

	if m.editor != nil {
		return m, m.editor.updateInputs(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.store.State()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case " ", "space":
		if state.Item(m.cursor) != nil {
			m.store.Send(tasklist.ToggleTaskDone{Index: m.cursor})
		}
	case "d":
		if state.Item(m.cursor) != nil {
			m.store.Send(tasklist.DeleteTask{Index: m.cursor})
		}
	case "e":
		m.store.Send(tasklist.ToggleEditing{})
	case "J":
		if state.IsEditing && m.cursor < len(state.Items)-1 {
			m.store.Send(tasklist.MoveTask{From: m.cursor, To: m.cursor + 1})
			m.cursor++
		}
	case "K":
		if state.IsEditing && m.cursor > 0 && state.Item(m.cursor) != nil {
			m.store.Send(tasklist.MoveTask{From: m.cursor, To: m.cursor - 1})
			m.cursor--
		}
	case "r":
		m.store.Send(tasklist.Refresh{})
	case "n":
		return m, m.openEditor(m.list.ReactorForCreatingTask())
	case "enter":
		if cell := state.Item(m.cursor); cell != nil {
			return m, m.openEditor(m.list.ReactorForEditingTask(cell))
		}
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.store.Send(taskedit.Cancel{})
		return m, nil
	case "enter":
		m.editor.store.Send(taskedit.Submit{})
		return m, nil
	case "tab", "shift+tab":
		return m, m.editor.switchField()
	}
	return m, m.editor.updateInputs(msg)
}

func (m *Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.alert.resolve(0)
		m.alert = nil
	case "n", "N", "esc":
		m.alert.resolve(len(m.alert.alert.Actions) - 1)
		m.alert = nil
	}
	return m, nil
}

func (m *Model) openEditor(r *taskedit.Reactor) tea.Cmd {
	m.closeEditor()
	m.editor = newEditor(m.ctx, m.loop, r)
	m.editor.unwatch = m.watch.watchEditor(m.editor.store)
	return m.editor.title.Focus()
}

func (m *Model) closeEditor() {
	if m.editor == nil {
		return
	}
	m.editor.close()
	m.editor = nil
}

func (m *Model) clampCursor() {
	n := len(m.store.State().Items)
	m.cursor = max(0, min(m.cursor, n-1))
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	switch {
	case m.editor != nil:
		m.editor.view(&b)
	case m.showHelp:
		writeHelp(&b)
	default:
		m.writeList(&b)
	}
	if m.alert != nil {
		writeAlert(&b, m.alert.alert)
	}
	return b.String()
}

func (m *Model) writeList(b *strings.Builder) {
	state := m.store.State()
	b.WriteString(titleStyle.Render("Tasks"))
	if state.IsEditing {
		b.WriteString("  " + editingStyle.Render("editing"))
	}
	b.WriteString("\n\n")

	if len(state.Items) == 0 {
		b.WriteString("  No tasks. Press n to add one.\n\n")
	}
	for i, item := range state.Items {
		b.WriteString(formatRow(item.State(), i == m.cursor, state.IsEditing))
		b.WriteString("\n")
	}
	if len(state.Items) > 0 {
		b.WriteString("\n")
	}

	footer := "n new | enter edit | space done | e edit mode | ? help | q quit"
	if state.IsEditing {
		footer = "J/K move | d delete | e done editing | q quit"
	}
	b.WriteString(helpStyle.Render(footer) + "\n")
}

func formatRow(t task.Task, selected, editing bool) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	title := t.Title
	if t.IsDone {
		check = "[x]"
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s%s %s", cursor, check, title)
	if editing && selected {
		line += " " + editingStyle.Render("↕")
	}
	if memo := t.MemoText(); memo != "" {
		if len(memo) > 60 {
			memo = memo[:57] + "..."
		}
		line += "\n      " + memoStyle.Render(memo)
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  space        Toggle done\n")
	b.WriteString("  n            New task\n")
	b.WriteString("  enter        Edit task\n")
	b.WriteString("  e            Toggle editing mode\n")
	b.WriteString("  J/K          Move task (editing mode)\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  r            Reload tasks\n")
	b.WriteString("  ?            Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeAlert(b *strings.Builder, alert taskedit.Alert) {
	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Bold(true).Render(alert.Title) + "\n")
	body.WriteString(alert.Message + "\n\n")
	for i, action := range alert.Actions {
		key := "n"
		if i == 0 {
			key = "y"
		}
		label := action.Title()
		if action.Style() == taskedit.StyleDestructive {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(label)
		}
		if i > 0 {
			body.WriteString("   ")
		}
		body.WriteString(fmt.Sprintf("%s %s", key, label))
	}
	b.WriteString("\n" + alertBoxStyle.Render(body.String()) + "\n")
}

type editor struct {
	store   *taskedit.Store
	title   textinput.Model
	memo    textinput.Model
	focus   int
	unwatch func()
}

func newEditor(ctx context.Context, loop *reactor.Loop, r *taskedit.Reactor) *editor {
	store := reactor.NewStore[taskedit.Action, taskedit.Mutation, taskedit.State](ctx, loop, r, reactor.WithName("taskedit"))
	state := store.State()

	title := textinput.New()
	title.Placeholder = "What needs to be done?"
	title.Prompt = ""
	title.SetValue(state.TaskTitle)
	title.CursorEnd()

	memo := textinput.New()
	memo.Placeholder = "Memo"
	memo.Prompt = ""
	memo.SetValue(state.TaskMemo)
	memo.CursorEnd()

	return &editor{store: store, title: title, memo: memo}
}

func (e *editor) switchField() tea.Cmd {
	if e.focus == 0 {
		e.focus = 1
		e.title.Blur()
		return e.memo.Focus()
	}
	e.focus = 0
	e.memo.Blur()
	return e.title.Focus()
}

// updateInputs forwards msg to the inputs and reports edited values to the
// editor store.
func (e *editor) updateInputs(msg tea.Msg) tea.Cmd {
	title, memo := e.title.Value(), e.memo.Value()

	var cmds [2]tea.Cmd
	e.title, cmds[0] = e.title.Update(msg)
	e.memo, cmds[1] = e.memo.Update(msg)

	if v := e.title.Value(); v != title {
		e.store.Send(taskedit.UpdateTitle{Title: v})
	}
	if v := e.memo.Value(); v != memo {
		e.store.Send(taskedit.UpdateMemo{Memo: v})
	}
	return tea.Batch(cmds[:]...)
}

func (e *editor) view(b *strings.Builder) {
	state := e.store.State()
	b.WriteString(titleStyle.Render(state.Title) + "\n\n")
	b.WriteString(labelStyle.Render("Title") + e.title.View() + "\n")
	b.WriteString(labelStyle.Render("Memo") + e.memo.View() + "\n\n")
	if !state.CanSubmit {
		b.WriteString(editingStyle.Render("A title is required.") + "\n")
	}
	b.WriteString(helpStyle.Render("enter save | tab switch field | esc cancel") + "\n")
}

func (e *editor) close() {
	if e.unwatch != nil {
		e.unwatch()
	}
	e.store.Close()
}

// watcher turns reactor state changes into a coalesced wake-up signal for
// the program. Row stores are observed as they appear in the list.
type watcher struct {
	signal chan struct{}

	mu    sync.Mutex
	cells map[*tasklist.CellStore]func()
	stops []func()
}

func newWatcher() *watcher {
	return &watcher{
		signal: make(chan struct{}, 1),
		cells:  make(map[*tasklist.CellStore]func()),
	}
}

func (w *watcher) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) watchList(store *tasklist.Store) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stops = append(w.stops, store.Observe(func(state tasklist.State) {
		w.syncCells(state.Items)
		w.notify()
	}))
}

func (w *watcher) watchEditor(store *taskedit.Store) (cancel func()) {
	return store.Observe(func(taskedit.State) {
		w.notify()
	})
}

func (w *watcher) syncCells(items []*tasklist.CellStore) {
	w.mu.Lock()
	defer w.mu.Unlock()

	live := make(map[*tasklist.CellStore]bool, len(items))
	for _, item := range items {
		live[item] = true
		if _, ok := w.cells[item]; !ok {
			w.cells[item] = item.Observe(func(task.Task) {
				w.notify()
			})
		}
	}
	for item, cancel := range w.cells {
		if !live[item] {
			cancel()
			delete(w.cells, item)
		}
	}
}

func (w *watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, stop := range w.stops {
		stop()
	}
	w.stops = nil
	for item, cancel := range w.cells {
		cancel()
		delete(w.cells, item)
	}
}

func waitForState(ctx context.Context, signal <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-signal:
			return stateMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
