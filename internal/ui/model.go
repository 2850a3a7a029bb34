// Package ui implements the interactive watch view.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"countdo/internal/service"
	"countdo/internal/tasklist"
)

// RequiredMessage is shown when the form is submitted with a blank field.
const RequiredMessage = "All fields are required!"

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

// tickMsg is sent by the countdown ticker.
type tickMsg time.Time

// actionDoneMsg reports the end of a controller action.
type actionDoneMsg struct {
	err error
	add bool
}

// Model is the bubbletea model of the watch view.
type Model struct {
	ctx  context.Context
	ctrl *tasklist.Controller

	now    time.Time
	views  []tasklist.View
	cursor int
	mode   mode

	// form
	formTitle string
	inputs    [2]textinput.Model
	focus     int
	formErr   string
	formReply chan tasklist.FormResult

	// confirmation
	question     string
	confirmReply chan bool

	status    string
	statusErr bool

	// set from the 'a' key until its action reports back
	addPending bool
}

// NewModel creates the watch model over a loaded controller.
func NewModel(ctx context.Context, ctrl *tasklist.Controller) *Model {
	text := textinput.New()
	text.Placeholder = "What needs doing?"
	text.CharLimit = 256
	text.Width = 40

	deadline := textinput.New()
	deadline.Placeholder = tasklist.EditLayout
	deadline.CharLimit = 40
	deadline.Width = 40

	m := &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		inputs: [2]textinput.Model{text, deadline},
		status: "a add  e edit  space toggle  d delete  r reload  q quit",
	}
	m.refresh(ctrl.Now())
	return m
}

// Init implements tea.Model. Ticks come from the controller's ticker.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	case tickMsg:
		m.refresh(time.Time(msg))
	case actionDoneMsg:
		if msg.add {
			m.addPending = false
		}
		m.refresh(m.ctrl.Now())
		m.reportError(msg.err)
	case notifyMsg:
		m.status = msg.n.Title + " " + msg.n.Message
		m.statusErr = msg.n.Level == tasklist.LevelError
	case formRequestMsg:
		m.openForm(msg)
		return m, textinput.Blink
	case confirmRequestMsg:
		m.mode = modeConfirm
		m.question = msg.question
		m.confirmReply = msg.reply
	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = max(msg.Width-20, 10)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.views))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.views))
	case "a":
		if m.addPending || m.ctrl.Adding() {
			return m, nil
		}
		m.addPending = true
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() tea.Msg {
			return actionDoneMsg{err: ctrl.AddTask(ctx), add: true}
		}
	case "r":
		return m, m.run(m.ctrl.Load)
	case "e", " ", "enter", "d":
		id, ok := m.selected()
		if !ok {
			return m, nil
		}
		switch msg.String() {
		case "e":
			return m, m.run(func(ctx context.Context) error { return m.ctrl.EditTask(ctx, id) })
		case "d":
			return m, m.run(func(ctx context.Context) error { return m.ctrl.DeleteTask(ctx, id) })
		default:
			return m, m.run(func(ctx context.Context) error { return m.ctrl.ToggleCompletion(ctx, id) })
		}
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeForm(tasklist.Cancelled{})
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.setFocus(1 - m.focus)
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.inputs[0].Value())
		deadline := strings.TrimSpace(m.inputs[1].Value())
		if text == "" || deadline == "" {
			m.formErr = RequiredMessage
			return m, nil
		}
		m.closeForm(tasklist.Submitted{Text: text, Deadline: deadline})
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.closeConfirm(true)
	case "n", "N", "esc", "ctrl+c":
		m.closeConfirm(false)
	}
	return m, nil
}

func (m *Model) openForm(msg formRequestMsg) {
	// A new request replaces one still open.
	if m.formReply != nil {
		m.formReply <- tasklist.Cancelled{}
	}
	m.mode = modeForm
	m.formTitle = msg.title
	m.formReply = msg.reply
	m.formErr = ""
	m.inputs[0].SetValue(msg.defaults.Text)
	m.inputs[1].SetValue(msg.defaults.Deadline)
	m.setFocus(0)
}

func (m *Model) closeForm(res tasklist.FormResult) {
	if m.formReply != nil {
		m.formReply <- res
	}
	m.formReply = nil
	m.formErr = ""
	m.mode = modeList
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) closeConfirm(ok bool) {
	if m.confirmReply != nil {
		m.confirmReply <- ok
	}
	m.confirmReply = nil
	m.question = ""
	m.mode = modeList
}

// Shutdown answers any open dialog so the waiting action can finish.
func (m *Model) Shutdown() {
	if m.mode == modeForm {
		m.closeForm(tasklist.Cancelled{})
	}
	if m.mode == modeConfirm {
		m.closeConfirm(false)
	}
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// run executes a controller action off the update loop. Actions may block
// on a dialog that this model answers.
func (m *Model) run(action func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: action(ctx)}
	}
}

// reportError shows errors the controller does not notify about.
func (m *Model) reportError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, tasklist.ErrAddInFlight):
		m.status, m.statusErr = "Adding...", false
	case tasklist.IsValidation(err):
		m.status, m.statusErr = "Invalid task: "+err.Error(), true
	case service.IsStoreError(err):
		// Already notified.
	case errors.Is(err, context.Canceled):
	default:
		m.status, m.statusErr = err.Error(), true
	}
}

func (m *Model) refresh(now time.Time) {
	m.now = now
	m.views = m.ctrl.Views(now)
	m.cursor = clampCursor(m.cursor, len(m.views))
}

func (m *Model) selected() (string, bool) {
	if len(m.views) == 0 {
		return "", false
	}
	return m.views[m.cursor].Task.ID, true
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("countdo"))
	if m.addPending || m.ctrl.Adding() {
		b.WriteString("  " + dimStyle.Render("Adding..."))
	}
	b.WriteString("\n\n")

	if len(m.views) == 0 {
		b.WriteString(dimStyle.Render("No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	}
	for i, v := range m.views {
		b.WriteString(m.renderRow(i, v))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString("\n")
		b.WriteString(dialogStyle.Render(m.renderForm()))
		b.WriteString("\n")
	case modeConfirm:
		b.WriteString("\n")
		b.WriteString(dialogStyle.Render(m.question + "  (y/n)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(successStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderRow(i int, v tasklist.View) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}
	remaining := v.Remaining
	if v.State == tasklist.Completed {
		remaining = "done"
	}
	deadline := tasklist.FormatDeadline(v.Task.Deadline, "2006-01-02 15:04", m.ctrl.Location())
	line := fmt.Sprintf("[%s] %s  %s", v.State.Mark(), v.Task.Text, dimStyle.Render(deadline))
	return cursor + stateStyle(v.State).Render(line) + "  " + stateStyle(v.State).Render(remaining)
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.formTitle))
	b.WriteString("\n\nTask\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\nDeadline\n")
	b.WriteString(m.inputs[1].View())
	b.WriteString("\n\n")
	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter save  tab switch field  esc cancel"))
	return b.String()
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
