package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/store"
	"retrodesk/pkg/wm"
)

func testDesktop(t *testing.T) *desktop.Desktop {
	t.Helper()
	ix, err := content.NewIndex(
		&content.Document{Type: content.TypePost, Meta: content.Meta{Title: "Hello World", Slug: "hello-world", Date: "2025-01-05"},
			Markdown: "# Greetings\n\nSome **bold** words."},
		&content.Document{Type: content.TypePost, Meta: content.Meta{Title: "Broken", Slug: "broken"}, RenderErr: errors.New("bad tabs")},
		&content.Document{Type: content.TypeProject, Meta: content.Meta{Title: "RetroDesk", Slug: "retrodesk", Date: "2025-03-14", Tags: []string{"go"}}},
		&content.Document{Type: content.TypeProject, Meta: content.Meta{Title: "Tiny Shell", Slug: "tiny-shell", Date: "2024-11-02"},
			Markdown: "A small shell."},
	)
	require.NoError(t, err)
	return desktop.New(desktop.Config{
		Index: ix,
		Prefs: store.NewPrefs(store.NewMemory(), nil),
		Now:   func() time.Time { return time.Date(2025, 3, 14, 15, 4, 5, 0, time.UTC) },
	})
}

func newModel(t *testing.T) (*Model, *desktop.Desktop) {
	t.Helper()
	d := testDesktop(t)
	m := New(Config{Desktop: d, GlamourStyle: "notty"})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, d
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func activeWindow(t *testing.T, d *desktop.Desktop) wm.Window {
	t.Helper()
	st := d.State()
	for _, w := range st.Windows {
		if w.ID == st.Active {
			return w
		}
	}
	t.Fatalf("no active window")
	return wm.Window{}
}

func TestResizeReportsViewport(t *testing.T) {
	_, d := newModel(t)
	assert.Equal(t, wm.Viewport{Width: 120 * cellWidth, Height: 40 * cellHeight}, d.State().Viewport)
}

func TestOpenFromIcons(t *testing.T) {
	m, d := newModel(t)

	press(m, keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))

	w := activeWindow(t, d)
	assert.Equal(t, wm.KindBlog, w.Kind)
	assert.Equal(t, focusWindow, m.focus)
	assert.Contains(t, m.View(), "Hello World")
}

func TestTerminal(t *testing.T) {
	m, d := newModel(t)

	press(m, runes("`"))
	w := activeWindow(t, d)
	require.Equal(t, wm.KindTerminal, w.Kind)

	press(m, runes("echo hi"), keyMsg(tea.KeyEnter))
	_, c, err := d.Window(w.ID)
	require.NoError(t, err)
	lines := c.(*desktop.Terminal).Lines
	assert.Contains(t, lines, `C:\>echo hi`)
	assert.Contains(t, lines, "hi")
	assert.Contains(t, m.View(), `C:\>echo hi`)

	v := m.views[w.ID]
	press(m, keyMsg(tea.KeyUp))
	assert.Equal(t, "echo hi", v.input.Value())

	v.input.Reset()
	press(m, runes("ec"), keyMsg(tea.KeyTab))
	assert.Equal(t, "echo ", v.input.Value())

	// A backtick typed into a terminal is input, not a hotkey.
	press(m, runes("`"))
	assert.Len(t, d.State().Windows, 1)
	assert.Equal(t, "echo `", v.input.Value())
}

func TestExplorerSearchAndOpen(t *testing.T) {
	m, d := newModel(t)

	press(m, keyMsg(tea.KeyEnter))
	explorer := activeWindow(t, d)
	require.Equal(t, wm.KindProjects, explorer.Kind)
	v := m.views[explorer.ID]
	require.Len(t, v.explorer.Items, 2)

	press(m, runes("/"), runes("tiny"))
	assert.True(t, v.searching)
	require.Len(t, v.explorer.Items, 1)
	assert.Equal(t, "tiny-shell", v.explorer.Items[0].Slug)

	press(m, keyMsg(tea.KeyEnter))
	assert.False(t, v.searching)

	press(m, keyMsg(tea.KeyEnter))
	doc := activeWindow(t, d)
	assert.Equal(t, wm.KindDoc, doc.Kind)
	assert.Equal(t, "Tiny Shell", doc.Title)
	assert.Contains(t, m.View(), "A small shell.")
}

func TestExplorerToggleView(t *testing.T) {
	m, d := newModel(t)
	press(m, keyMsg(tea.KeyEnter))
	require.Equal(t, desktop.ViewIcons, d.State().View)

	press(m, runes("v"))
	assert.Equal(t, desktop.ViewList, d.State().View)
	assert.Contains(t, m.View(), "[list]")

	press(m, runes("v"))
	assert.Equal(t, desktop.ViewIcons, d.State().View)
}

func TestDocumentRendersMarkdown(t *testing.T) {
	m, d := newModel(t)

	// Opened from elsewhere: the subscription refreshes the model.
	_, err := d.Dispatch(desktop.OpenDoc{Type: content.TypePost, Slug: "hello-world"})
	require.NoError(t, err)
	msg := m.waitForState()()
	require.IsType(t, stateMsg{}, msg)
	m.Update(msg)

	view := m.View()
	assert.Contains(t, view, "Greetings")
	assert.Contains(t, view, "bold")
	assert.Contains(t, view, "2025-01-05")
}

func TestDocumentPlaceholder(t *testing.T) {
	m, d := newModel(t)
	_, err := d.Dispatch(desktop.OpenDoc{Type: content.TypePost, Slug: "broken"})
	require.NoError(t, err)
	m.refresh()
	assert.Contains(t, m.View(), desktop.MsgRenderError)
}

func TestStartMenu(t *testing.T) {
	m, d := newModel(t)

	press(m, keyMsg(tea.KeyF1))
	require.True(t, d.State().StartMenu)
	assert.Contains(t, m.View(), "retrodesk")

	press(m, keyMsg(tea.KeyEsc))
	assert.False(t, d.State().StartMenu)

	press(m, keyMsg(tea.KeyF1), keyMsg(tea.KeyDown), keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))
	assert.False(t, d.State().StartMenu)
	assert.Equal(t, wm.KindAbout, activeWindow(t, d).Kind)
}

func TestWindowKeys(t *testing.T) {
	m, d := newModel(t)
	press(m, keyMsg(tea.KeyEnter))
	press(m, keyMsg(tea.KeyEsc), keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))
	require.Len(t, d.State().Windows, 2)
	blog := activeWindow(t, d)

	press(m, keyMsg(tea.KeyF3))
	assert.True(t, activeWindow(t, d).Maximized)
	press(m, keyMsg(tea.KeyF3))
	assert.False(t, activeWindow(t, d).Maximized)

	press(m, keyMsg(tea.KeyF2))
	assert.NotEqual(t, blog.ID, d.State().Active)

	press(m, keyMsg(tea.KeyF6))
	assert.Nil(t, m.activeView())

	press(m, keyMsg(tea.KeyF5))
	assert.True(t, d.State().ShowingDesktop)
	assert.Contains(t, m.View(), "Press `")

	press(m, keyMsg(tea.KeyF5), keyMsg(tea.KeyF2))
	require.NotNil(t, m.activeView())
	press(m, keyMsg(tea.KeyF4))
	assert.Len(t, d.State().Windows, 1)
}

func TestMoveAndResizeKeys(t *testing.T) {
	m, d := newModel(t)
	press(m, keyMsg(tea.KeyDown), keyMsg(tea.KeyDown), keyMsg(tea.KeyEnter))
	about := activeWindow(t, d)
	require.Equal(t, wm.KindAbout, about.Kind)
	require.False(t, about.Maximized)
	start := about.Bounds

	press(m, keyMsg(tea.KeyF7))
	drag := d.State().Drag
	require.NotNil(t, drag)
	assert.Equal(t, wm.DragMove, drag.Mode)

	press(m, keyMsg(tea.KeyRight), keyMsg(tea.KeyRight), keyMsg(tea.KeyDown))
	want := wm.Bounds{X: start.X + 2*cellWidth, Y: start.Y + cellHeight, W: start.W, H: start.H}
	assert.Equal(t, want, d.State().Drag.Live)
	assert.Equal(t, start, activeWindow(t, d).Bounds)
	assert.Contains(t, m.View(), "Moving:")

	press(m, keyMsg(tea.KeyEnter))
	assert.Nil(t, d.State().Drag)
	assert.Equal(t, want, activeWindow(t, d).Bounds)

	press(m, keyMsg(tea.KeyF8), keyMsg(tea.KeyLeft))
	require.NotNil(t, d.State().Drag)
	assert.Equal(t, want.W-cellWidth, d.State().Drag.Live.W)
	press(m, keyMsg(tea.KeyEsc))
	assert.Nil(t, d.State().Drag)
	assert.Equal(t, want, activeWindow(t, d).Bounds)
	assert.Len(t, d.State().Windows, 1, "esc only cancels the drag")
}

func TestMinimizeRestores(t *testing.T) {
	m, d := newModel(t)
	press(m, keyMsg(tea.KeyEnter))
	w := activeWindow(t, d)

	press(m, keyMsg(tea.KeyF6))
	assert.Nil(t, m.activeView())
	assert.True(t, activeWindow(t, d).Minimized)

	press(m, keyMsg(tea.KeyF6))
	require.NotNil(t, m.activeView())
	assert.Equal(t, w.ID, m.activeView().id)
	assert.Equal(t, focusWindow, m.focus)
}

func TestTaskbar(t *testing.T) {
	m, _ := newModel(t)
	press(m, keyMsg(tea.KeyEnter))
	bar := m.viewTaskbar()
	assert.Contains(t, bar, "Start")
	assert.Contains(t, bar, "Projects")
	assert.Contains(t, bar, "03:04 PM")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// q only quits from the icons; a terminal takes it as input.
	press(m, runes("`"), runes("q"))
	v := m.activeView()
	require.NotNil(t, v)
	assert.Equal(t, "q", v.input.Value())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
	}
}

func TestDocHeader(t *testing.T) {
	h := docHeader(content.Meta{
		Date:        "2025-01-05",
		Tags:        []string{"go", "tui"},
		ReadingTime: &content.ReadingTime{Text: "6 min read", Words: 1200},
	})
	assert.Equal(t, "2025-01-05 · 6 min read · 1,200 words · #go · #tui", h)
}
