package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// lifecycle is where the launched program stands.
type lifecycle int

const (
	phaseSpawning lifecycle = iota
	phaseSuspended
	phaseInjected
	phaseRunning
)

func (l lifecycle) String() string {
	switch l {
	case phaseSpawning:
		return "spawning"
	case phaseSuspended:
		return "suspended"
	case phaseInjected:
		return "injected"
	case phaseRunning:
		return "running"
	default:
		return "unknown"
	}
}

type action string

const (
	actionInject   action = "inject"
	actionResume   action = "resume"
	actionUninject action = "uninject"
	actionQuit     action = "quit"
)

type modelState int

const (
	stateSelectAction modelState = iota
	stateEditData
)

type interactiveModel struct {
	ctx       context.Context
	err       error
	log       *zap.Logger
	quitErr   error
	rt        *runtime.Runtime
	prog      *hookinject.Program
	suspended *runtime.SuspendedProgram
	injected  *runtime.InjectedProgram
	lib       hookinject.Library
	result    string
	data      textinput.Model
	selected  int
	phase     lifecycle
	state     modelState
	pid       int
}

func newInteractiveModel(ctx context.Context, log *zap.Logger, rt *runtime.Runtime, prog *hookinject.Program, lib hookinject.Library) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "data: "
	ti.Placeholder = "string passed to " + lib.Entrypoint()
	ti.Width = 40
	ti.SetValue(lib.Data())

	return &interactiveModel{
		ctx:   ctx,
		log:   log,
		rt:    rt,
		prog:  prog,
		lib:   lib,
		data:  ti,
		phase: phaseSpawning,
		state: stateSelectAction,
	}
}

type spawnedMsg struct {
	err       error
	suspended *runtime.SuspendedProgram
}

type actionResultMsg struct {
	err      error
	injected *runtime.InjectedProgram
	result   string
	next     lifecycle
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.spawn
}

func (m *interactiveModel) spawn() tea.Msg {
	s, err := m.rt.Spawn(m.ctx, m.prog)
	return spawnedMsg{suspended: s, err: err}
}

// actions lists what can be done from the current phase.
func (m *interactiveModel) actions() []action {
	switch m.phase {
	case phaseSuspended:
		return []action{actionInject, actionResume, actionQuit}
	case phaseInjected:
		return []action{actionUninject, actionQuit}
	default:
		return []action{actionQuit}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateEditData {
			switch msg.String() {
			case "enter":
				m.state = stateSelectAction
				m.data.Blur()
				return m, m.inject(m.lib.WithData(m.data.Value()))
			case "esc":
				m.state = stateSelectAction
				m.data.Blur()
				return m, nil
			case "ctrl+c":
				return m, m.quit()
			}
			var cmd tea.Cmd
			m.data, cmd = m.data.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.quit()

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.actions())-1 {
				m.selected++
			}

		case "enter":
			if m.phase == phaseSpawning {
				return m, nil
			}
			return m, m.run(m.actions()[m.selected])
		}

	case spawnedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.suspended = msg.suspended
		m.pid = msg.suspended.Process().Pid()
		m.phase = phaseSuspended
		m.result = fmt.Sprintf("spawned %s suspended", m.prog.Path())

	case actionResultMsg:
		m.err = msg.err
		m.result = msg.result
		if msg.err == nil {
			m.phase = msg.next
			if msg.injected != nil {
				m.injected = msg.injected
			}
		}
		m.selected = 0
	}

	return m, nil
}

func (m *interactiveModel) run(a action) tea.Cmd {
	switch a {
	case actionInject:
		m.state = stateEditData
		m.data.Focus()
		return textinput.Blink
	case actionResume:
		return m.resume
	case actionUninject:
		return m.uninject
	default:
		return m.quit()
	}
}

func (m *interactiveModel) inject(lib hookinject.Library) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		out, err := m.suspended.Inject(m.ctx, lib)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{
			injected: out,
			next:     phaseInjected,
			result:   fmt.Sprintf("injected id %d and resumed in %s", out.ID(), time.Since(start).Round(time.Millisecond)),
		}
	}
}

func (m *interactiveModel) resume() tea.Msg {
	child, err := m.suspended.Resume(m.ctx)
	if err != nil {
		return actionResultMsg{err: err}
	}
	return actionResultMsg{next: phaseRunning, result: fmt.Sprintf("resumed pid %d without injecting", child.Pid())}
}

func (m *interactiveModel) uninject() tea.Msg {
	id := m.injected.ID()
	if err := m.injected.Uninject(m.ctx); err != nil {
		return actionResultMsg{err: err}
	}
	return actionResultMsg{next: phaseRunning, result: fmt.Sprintf("uninjected id %d", id)}
}

// quit leaves nothing suspended behind.
func (m *interactiveModel) quit() tea.Cmd {
	if m.phase == phaseSuspended && m.suspended != nil {
		if _, err := m.suspended.Resume(context.Background()); err != nil {
			m.log.Error("program left suspended",
				zap.Int("pid", m.pid),
				zap.Error(err))
			m.quitErr = fmt.Errorf("pid %d left suspended: %w", m.pid, err)
		}
	}
	return tea.Quit
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.phase == phaseSpawning {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.phase == phaseSpawning {
		return "Spawning " + m.prog.Path() + "..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("hookinject"))
	b.WriteString(" ")
	b.WriteString(m.prog.Path())
	b.WriteString(" ")
	b.WriteString(pidStyle.Render(fmt.Sprintf("pid %d", m.pid)))
	b.WriteString(" ")
	b.WriteString(labelStyle.Render(m.phase.String()))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("library: "))
	if m.lib.Kind() == hookinject.SourcePath {
		b.WriteString(m.lib.Path())
	} else {
		b.WriteString(fmt.Sprintf("<%d byte blob>", len(m.lib.Blob())))
	}
	b.WriteString(" ")
	b.WriteString(labelStyle.Render("entry: "))
	b.WriteString(m.lib.Entrypoint())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("live injections: "))
	b.WriteString(fmt.Sprintf("%d", m.rt.Active()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAction:
		for i, a := range m.actions() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + string(a)))
			} else {
				b.WriteString("  " + string(a))
			}
			b.WriteString("\n")
		}

	case stateEditData:
		b.WriteString(m.data.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n\n")
	}

	if m.state == stateEditData {
		b.WriteString(helpStyle.Render("enter inject • esc back"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))
	}

	return b.String()
}

func runInteractive(ctx context.Context, log *zap.Logger, rt *runtime.Runtime, prog *hookinject.Program, lib hookinject.Library) error {
	m := newInteractiveModel(ctx, log, rt, prog, lib)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.quitErr
}
