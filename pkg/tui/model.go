package tui

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"retrodesk/pkg/desktop"
	"retrodesk/pkg/wm"
)

// Terminal cells are reported to the window manager as pixels so that
// new windows cascade inside a sensibly sized viewport.
const (
	cellWidth  = 8
	cellHeight = 16
)

const iconColumnWidth = 16

type focus int

const (
	focusDesktop focus = iota
	focusWindow
)

// stateMsg signals that the desktop changed outside this model, e.g. a
// content reload or a clock tick.
type stateMsg struct{}

// Config holds configuration for the terminal desktop.
type Config struct {
	Desktop *desktop.Desktop
	Logger  *zap.Logger
	// GlamourStyle names a glamour style such as "dark" or "notty".
	// Empty detects it from the terminal.
	GlamourStyle string
	KeyMap       *KeyMap
}

// Model is the bubbletea model of the terminal desktop. All mutations go
// through Desktop.Dispatch, so the browser desktop and this one see the
// same state when they share a Desktop.
type Model struct {
	d      *desktop.Desktop
	logger *zap.Logger
	keys   KeyMap
	styles Styles
	docs   *docRenderer

	st      desktop.State
	focus   focus
	iconIdx int
	menuIdx int
	views   map[string]*windowView
	status  string

	// pointerX and pointerY are the virtual pointer of a keyboard drag,
	// in desktop pixels.
	pointerX, pointerY int

	width, height int

	updates chan struct{}
	done    chan struct{}
	unsub   func()
	once    sync.Once
}

// New creates the model and subscribes it to desktop changes. Call Close
// when the program exits.
func New(cfg Config) *Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keys := DefaultKeyMap()
	if cfg.KeyMap != nil {
		keys = *cfg.KeyMap
	}

	m := &Model{
		d:       cfg.Desktop,
		logger:  logger,
		keys:    keys,
		docs:    newDocRenderer(cfg.GlamourStyle),
		views:   make(map[string]*windowView),
		width:   80,
		height:  24,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	m.unsub = m.d.Subscribe(func(desktop.State) {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m
}

// Close unsubscribes from the desktop.
func (m *Model) Close() {
	m.once.Do(func() {
		m.unsub()
		close(m.done)
	})
}

// Run starts a full screen program over d and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	m := New(cfg)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), textinput.Blink)
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.updates:
			return stateMsg{}
		case <-m.done:
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.dispatch(desktop.Resize{Viewport: wm.Viewport{Width: msg.Width * cellWidth, Height: msg.Height * cellHeight}})
		return m, nil

	case stateMsg:
		m.refresh()
		return m, m.waitForState()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	// Cursor blinks and the like go to the focused input.
	if v := m.activeView(); v != nil {
		return m, v.update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.st.Drag != nil {
		return m.updateDrag(msg)
	}
	if m.st.StartMenu {
		return m.updateStartMenu(msg)
	}

	active := m.activeView()
	switch {
	case key.Matches(msg, m.keys.Start):
		m.menuIdx = 0
		m.dispatch(desktop.StartMenu{})
		return nil
	case key.Matches(msg, m.keys.ShowDesktop):
		m.dispatch(desktop.ShowDesktop{})
		return nil
	case key.Matches(msg, m.keys.NextWindow):
		m.nextWindow()
		return nil
	case key.Matches(msg, m.keys.Minimize) && m.st.Active != "" && !m.st.ShowingDesktop:
		// Minimizes the shown window, or brings back a minimized one.
		if _, err := m.dispatch(desktop.Minimize{ID: m.st.Active, Toggle: true}); err == nil && m.activeView() != nil {
			m.focus = focusWindow
		}
		return nil
	}

	if active != nil {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.dispatch(desktop.Close{ID: active.id})
			return nil
		case key.Matches(msg, m.keys.Maximize):
			m.dispatch(desktop.Maximize{ID: active.id})
			return nil
		case key.Matches(msg, m.keys.Move):
			m.beginDrag(active.id, wm.DragMove)
			return nil
		case key.Matches(msg, m.keys.Resize):
			m.beginDrag(active.id, wm.DragResize)
			return nil
		}
	}

	if m.focus == focusWindow && active != nil {
		switch {
		case key.Matches(msg, m.keys.Back) && !active.searching:
			m.focus = focusDesktop
			return nil
		case key.Matches(msg, m.keys.Terminal) && !active.typing():
			return m.openTerminal()
		}
		return m.updateWindow(active, msg)
	}
	return m.updateDesktop(msg)
}

func (m *Model) updateDesktop(msg tea.KeyMsg) tea.Cmd {
	icons := m.st.Icons
	switch {
	case key.Matches(msg, m.keys.QuitDesktop):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.iconIdx = max(0, m.iconIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.iconIdx = min(len(icons)-1, m.iconIdx+1)
	case key.Matches(msg, m.keys.Select):
		if m.iconIdx < len(icons) {
			return m.open(icons[m.iconIdx].Kind)
		}
	case key.Matches(msg, m.keys.Terminal):
		return m.openTerminal()
	case key.Matches(msg, m.keys.Back):
		if m.activeView() != nil {
			m.focus = focusWindow
		}
	}
	return nil
}

func (m *Model) updateStartMenu(msg tea.KeyMsg) tea.Cmd {
	icons := m.st.Icons
	switch {
	case key.Matches(msg, m.keys.Start):
		m.dispatch(desktop.StartMenu{})
	case key.Matches(msg, m.keys.Back):
		m.dispatch(desktop.Hotkey{Key: "Escape"})
	case key.Matches(msg, m.keys.Up):
		m.menuIdx = max(0, m.menuIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.menuIdx = min(len(icons)-1, m.menuIdx+1)
	case key.Matches(msg, m.keys.Select):
		if m.menuIdx < len(icons) {
			return m.open(icons[m.menuIdx].Kind)
		}
	}
	return nil
}

// beginDrag starts a keyboard driven move or resize. The pointer starts
// on the title bar corner for a move and on the grip for a resize, and
// each arrow press moves it by one cell.
func (m *Model) beginDrag(id string, mode wm.DragMode) {
	i := slices.IndexFunc(m.st.Windows, func(w wm.Window) bool { return w.ID == id })
	if i < 0 {
		return
	}
	b := m.st.Windows[i].Bounds
	px, py := b.X, b.Y
	if mode == wm.DragResize {
		px, py = b.X+b.W, b.Y+b.H
	}
	if _, err := m.dispatch(desktop.DragStart{ID: id, Mode: mode, X: px, Y: py}); err == nil {
		m.pointerX, m.pointerY = px, py
	}
}

func (m *Model) updateDrag(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.dispatch(desktop.DragEnd{})
		return nil
	case key.Matches(msg, m.keys.Back):
		m.dispatch(desktop.DragCancel{})
		return nil
	case key.Matches(msg, m.keys.Left):
		m.pointerX -= cellWidth
	case key.Matches(msg, m.keys.Right):
		m.pointerX += cellWidth
	case key.Matches(msg, m.keys.Up):
		m.pointerY -= cellHeight
	case key.Matches(msg, m.keys.Down):
		m.pointerY += cellHeight
	default:
		return nil
	}
	m.dispatch(desktop.DragMove{X: m.pointerX, Y: m.pointerY})
	return nil
}

func (m *Model) open(kind wm.Kind) tea.Cmd {
	rep, err := m.dispatch(desktop.Open{Kind: kind})
	if err != nil || rep.Window == nil {
		return nil
	}
	return m.focusWindow(rep.Window.ID)
}

func (m *Model) openTerminal() tea.Cmd {
	rep, err := m.dispatch(desktop.Hotkey{Key: "`"})
	if err != nil || rep.Window == nil {
		return nil
	}
	return m.focusWindow(rep.Window.ID)
}

// nextWindow activates the taskbar button after the active one,
// restoring it if minimized.
func (m *Model) nextWindow() {
	wins := m.st.Windows
	if len(wins) == 0 {
		return
	}
	i := slices.IndexFunc(wins, func(w wm.Window) bool { return w.ID == m.st.Active })
	next := wins[(i+1)%len(wins)]
	if _, err := m.dispatch(desktop.Activate{ID: next.ID}); err == nil {
		m.focus = focusWindow
	}
}

func (m *Model) focusWindow(id string) tea.Cmd {
	m.focus = focusWindow
	if v, ok := m.views[id]; ok {
		return v.focus()
	}
	return nil
}

// dispatch applies ev and refreshes the model. Errors are shown in the
// status line.
func (m *Model) dispatch(ev desktop.Event) (desktop.Reply, error) {
	rep, err := m.d.Dispatch(ev)
	if err != nil {
		m.status = err.Error()
		m.logger.Debug("event rejected", zap.Error(err))
	} else {
		m.status = ""
	}
	m.refresh()
	return rep, err
}

// refresh reloads the desktop state and the content of the active window.
func (m *Model) refresh() {
	m.st = m.d.State()
	if m.styles.theme != m.st.Settings.Theme {
		m.styles = NewStyles(m.st.Settings.Theme)
	}

	seen := make(map[string]bool, len(m.st.Windows))
	for _, w := range m.st.Windows {
		seen[w.ID] = true
		if _, ok := m.views[w.ID]; !ok {
			m.views[w.ID] = newWindowView(w)
		}
	}
	for id := range m.views {
		if !seen[id] {
			delete(m.views, id)
		}
	}

	v := m.activeView()
	if v == nil {
		m.focus = focusDesktop
		return
	}
	win, content, err := m.d.Window(v.id)
	if err != nil {
		return
	}
	v.maximized = win.Maximized
	w, h := m.panelSize()
	v.sync(m.d, win, content, m.docs, w, h)
}

// activeView returns the view of the active window when it is shown.
func (m *Model) activeView() *windowView {
	if m.st.Active == "" || m.st.ShowingDesktop {
		return nil
	}
	for _, w := range m.st.Windows {
		if w.ID == m.st.Active && !w.Minimized {
			return m.views[w.ID]
		}
	}
	return nil
}

// panelSize is the inner size of the window panel.
func (m *Model) panelSize() (int, int) {
	// Borders, title bar, taskbar and help line.
	w := m.width - iconColumnWidth - 2
	h := m.height - 5
	if v := m.activeView(); v != nil && v.maximized {
		w = m.width - 2
	}
	return max(w, 10), max(h, 3)
}
