// Package tui is the interactive terminal front end: a source pane, an output
// pane that fills in as the translation streams, and key bindings for the
// language, model and credential selectors.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oukeidos/codetr/internal/language"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/models"
	"github.com/oukeidos/codetr/internal/request"
	"github.com/oukeidos/codetr/internal/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	chromeLines   = 4 // header, status, help, spacing
)

// snapshotMsg carries controller state into the update loop.
type snapshotMsg session.Snapshot

type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	changes chan struct{}

	snap session.Snapshot

	source   textarea.Model
	output   viewport.Model
	keyInput textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	editingKey bool
	// savedKey is the credential when the key input opened; esc restores it.
	savedKey  string
	keyEdited bool

	width  int
	height int
}

// New builds the UI model for ctrl. Runs started from the UI use ctx.
func New(ctx context.Context, ctrl *session.Controller) Model {
	src := textarea.New()
	src.Placeholder = "Paste or type source code"
	src.ShowLineNumbers = true
	src.CharLimit = 0
	src.MaxHeight = 0
	src.Focus()

	ki := textinput.New()
	ki.Placeholder = "API key"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		changes:  make(chan struct{}, 1),
		snap:     ctrl.Snapshot(),
		source:   src,
		output:   viewport.New(defaultWidth/2, defaultHeight-chromeLines),
		keyInput: ki,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
	m.source.SetValue(m.snap.SourceText)
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Listener is subscribed to the controller. It never blocks: pending
// notifications collapse into one and the update loop reads the latest
// snapshot.
func (m Model) Listener() func(session.Snapshot) {
	ch := m.changes
	return func(session.Snapshot) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch, ctrl, ctx := m.changes, m.ctrl, m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return snapshotMsg(ctrl.Snapshot())
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForChange())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case snapshotMsg:
		m.apply(session.Snapshot(msg))
		return m, m.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editingKey {
			return m.updateKeyInput(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.source, cmd = m.source.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Translate):
		if err := m.ctrl.Translate(m.ctx); err != nil {
			var rej *request.Rejection
			if !errors.As(err, &rej) {
				logger.Error("Failed to start translation", "error", err)
			}
		}
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.Cancel()
	case key.Matches(msg, m.keys.SourceNext):
		m.ctrl.SetSourceLanguage(language.Step(m.snap.SourceLanguage, 1))
	case key.Matches(msg, m.keys.SourcePrev):
		m.ctrl.SetSourceLanguage(language.Step(m.snap.SourceLanguage, -1))
	case key.Matches(msg, m.keys.TargetNext):
		m.setTarget(language.Step(m.snap.TargetLanguage, 1))
	case key.Matches(msg, m.keys.TargetPrev):
		m.setTarget(language.Step(m.snap.TargetLanguage, -1))
	case key.Matches(msg, m.keys.Model):
		m.ctrl.SetModel(models.Next(m.snap.Model))
	case key.Matches(msg, m.keys.Credential):
		m.editingKey = true
		m.savedKey = m.ctrl.Credential()
		m.keyEdited = false
		m.source.Blur()
		m.keyInput.SetValue("")
		m.keyInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	default:
		if !m.snap.SourceEditable {
			return m, nil
		}
		var cmd tea.Cmd
		m.source, cmd = m.source.Update(msg)
		if err := m.ctrl.SetSourceText(m.source.Value()); err != nil && !errors.Is(err, session.ErrBusy) {
			logger.Error("Failed to update source", "error", err)
		}
		m.apply(m.ctrl.Snapshot())
		return m, cmd
	}
	m.apply(m.ctrl.Snapshot())
	return m, nil
}

func (m *Model) setTarget(name string) {
	if err := m.ctrl.SetTargetLanguage(name); err != nil {
		var rej *request.Rejection
		if !errors.As(err, &rej) {
			logger.Error("Failed to re-translate", "error", err)
		}
	}
}

// updateKeyInput handles keys while the masked credential field is open.
// Every edit is saved; esc puts back the key that was stored on open.
func (m Model) updateKeyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.keyEdited {
			if err := m.ctrl.SetCredential(m.savedKey); err != nil {
				logger.Warn("Credential not restored", "error", err)
			}
		}
		fallthrough
	case tea.KeyEnter:
		m.editingKey = false
		m.keyEdited = false
		m.savedKey = ""
		m.keyInput.Blur()
		m.source.Focus()
		m.apply(m.ctrl.Snapshot())
		return m, nil
	case tea.KeyCtrlC:
		m.ctrl.Cancel()
		return m, tea.Quit
	}

	before := m.keyInput.Value()
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	if v := m.keyInput.Value(); v != before {
		m.keyEdited = true
		if err := m.ctrl.SetCredential(v); err != nil {
			logger.Warn("Credential not persisted", "error", err)
		}
	}
	m.apply(m.ctrl.Snapshot())
	return m, cmd
}

// apply copies controller state into the widgets.
func (m *Model) apply(s session.Snapshot) {
	m.snap = s
	if m.source.Value() != s.SourceText {
		m.source.SetValue(s.SourceText)
	}
	m.output.SetContent(s.OutputText)
	if s.Status == session.StatusRunning {
		m.output.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	paneW := width/2 - paneStyle.GetHorizontalFrameSize()
	paneH := height - chromeLines - paneStyle.GetVerticalFrameSize()
	if paneW < 10 {
		paneW = 10
	}
	if paneH < 3 {
		paneH = 3
	}
	m.source.SetWidth(paneW)
	m.source.SetHeight(paneH)
	m.output.Width = paneW
	m.output.Height = paneH
	m.keyInput.Width = paneW
	m.help.Width = width
}

func (m Model) View() string {
	header := m.headerView()

	srcStyle, outStyle := activePaneStyle, paneStyle
	if !m.snap.SourceEditable || m.editingKey {
		srcStyle = paneStyle
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		srcStyle.Render(m.source.View()),
		outStyle.Render(m.output.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panes,
		m.statusView(),
		m.help.View(m.keys),
	)
}

func (m Model) headerView() string {
	keyState := warnStyle.Render("missing")
	if m.snap.HasCredential {
		keyState = okStyle.Render("set")
	}
	line := fmt.Sprintf("%s  %s %s  →  %s %s   %s %s   %s %s",
		titleStyle.Render("codetr"),
		labelStyle.Render("from"), valueStyle.Render(m.snap.SourceLanguage),
		labelStyle.Render("to"), valueStyle.Render(m.snap.TargetLanguage),
		labelStyle.Render("model"), valueStyle.Render(string(m.snap.Model)),
		labelStyle.Render("key"), keyState,
	)
	if m.editingKey {
		hint := "API key (enter to keep, esc to cancel): "
		if m.savedKey != "" {
			hint = "New API key, replaces the saved one (enter to keep, esc to restore): "
		}
		line = labelStyle.Render(hint) + m.keyInput.View()
	}
	return line
}

func (m Model) statusView() string {
	count := fmt.Sprintf("%d/%d", request.Length(m.snap.SourceText), request.MaxLenFor(m.snap.Model))
	room := m.width - len(count) - 4
	msg := fit(m.snap.Message, room)
	switch m.snap.Status {
	case session.StatusRunning:
		msg = m.spinner.View() + " " + msg
	case session.StatusFailed:
		msg = warnStyle.Render(msg)
	case session.StatusCompleted:
		msg = okStyle.Render(msg)
	}
	return msg + "  " + labelStyle.Render(count)
}

// Run starts the full-screen UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *session.Controller) error {
	m := New(ctx, ctrl)
	unsubscribe := ctrl.Subscribe(m.Listener())
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
