package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/chanwatch/internal/logtail"
	"github.com/five82/chanwatch/internal/prefs"
	"github.com/five82/chanwatch/internal/state"
)

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Title     string // shown in the header, e.g. "/g/"
	ThemeName string
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string // log file tailed into the footer; empty disables it
	PollTick  time.Duration
}

const chromeHeight = 4 // header, tabs, log line, help line

// Model is the root application state for Bubble Tea.
type Model struct {
	store     *state.Store
	title     string
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	pollTick  time.Duration

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	snapshot   state.Snapshot
	selectedID int
	viewport   viewport.Model
	lastLog    string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		store:     opts.Store,
		title:     opts.Title,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.viewportHeight()
		}
		m.updateViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.ensureSelection()
		m.updateViewport()
		return m, nil

	case logLineMsg:
		m.lastLog = string(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.viewport.Height = m.viewportHeight()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		_ = prefs.Save(m.prefsPath, m.prefs)
		m.updateViewport()
		return m, nil

	case key.Matches(msg, m.keys.NextThread):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevThread):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) viewportHeight() int {
	h := m.height - chromeHeight
	if m.help.ShowAll {
		h -= len(m.keys.FullHelp()[1]) - 1
	}
	return max(h, 1)
}

// selectedIndex returns the position of the selected thread in the
// snapshot, or -1 when there are no threads.
func (m Model) selectedIndex() int {
	for i, t := range m.snapshot.Threads {
		if t.ID == m.selectedID {
			return i
		}
	}
	return -1
}

// ensureSelection keeps the selected thread across refreshes and falls back
// to the first thread when it disappears.
func (m *Model) ensureSelection() {
	if m.selectedIndex() >= 0 {
		return
	}
	m.selectedID = 0
	if len(m.snapshot.Threads) > 0 {
		m.selectedID = m.snapshot.Threads[0].ID
	}
	m.viewport.GotoTop()
}

func (m *Model) moveSelection(step int) {
	n := len(m.snapshot.Threads)
	if n == 0 {
		return
	}
	idx := (m.selectedIndex() + step + n) % n
	m.selectedID = m.snapshot.Threads[idx].ID
	m.updateViewport()
	m.viewport.GotoTop()
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	idx := m.selectedIndex()
	if idx < 0 {
		m.viewport.SetContent(m.renderEmpty())
		return
	}
	m.viewport.SetContent(m.renderThread(m.snapshot.Threads[idx]))
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLineMsg string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		line, err := logtail.Last(path)
		if err != nil {
			return logLineMsg("log unavailable: " + err.Error())
		}
		return logLineMsg(line)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
