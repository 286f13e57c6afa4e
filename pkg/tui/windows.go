package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/wm"
)

// windowView holds the per-window UI state that the desktop does not
// track: cursors, the search box, the terminal input line and the
// document scroll position.
type windowView struct {
	id        string
	kind      wm.Kind
	title     string
	maximized bool

	explorer  *desktop.Explorer
	cursor    int
	search    textinput.Model
	searching bool

	term  *desktop.Terminal
	input textinput.Model

	vp          viewport.Model
	docKey      string
	header      string
	placeholder string
}

func newWindowView(w wm.Window) *windowView {
	v := &windowView{id: w.ID, kind: w.Kind, title: w.Title}

	v.search = textinput.New()
	v.search.Prompt = "Search: "
	v.search.Placeholder = "title, tag or slug"
	v.search.CharLimit = 64

	v.input = textinput.New()
	v.input.CharLimit = 256
	if w.Kind == wm.KindTerminal {
		v.input.Focus()
	}

	v.vp = viewport.New(0, 0)
	return v
}

func (v *windowView) isExplorer() bool {
	return v.kind == wm.KindProjects || v.kind == wm.KindBlog
}

// typing reports whether printable keys belong to a text input.
func (v *windowView) typing() bool {
	return v.kind == wm.KindTerminal || v.searching
}

func (v *windowView) focus() tea.Cmd {
	if v.kind == wm.KindTerminal {
		return v.input.Focus()
	}
	return nil
}

// update forwards non-key messages such as cursor blinks.
func (v *windowView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case v.kind == wm.KindTerminal:
		v.input, cmd = v.input.Update(msg)
	case v.searching:
		v.search, cmd = v.search.Update(msg)
	case !v.isExplorer():
		v.vp, cmd = v.vp.Update(msg)
	}
	return cmd
}

// sync copies the desktop's view of the window into v.
func (v *windowView) sync(d *desktop.Desktop, w wm.Window, c desktop.WindowContent, docs *docRenderer, width, height int) {
	v.title = w.Title
	v.maximized = w.Maximized
	v.vp.Width, v.vp.Height = width, height

	switch c := c.(type) {
	case *desktop.Explorer:
		v.explorer = d.Explorer(c.Type, v.search.Value())
		v.cursor = min(v.cursor, max(0, len(v.explorer.Items)-1))
	case *desktop.Terminal:
		v.term = c
		v.input.Prompt = promptFor(c.Prompt)
		v.input.Width = max(1, width-lipgloss.Width(v.input.Prompt)-1)
	case *desktop.Doc:
		v.vp.Height = max(1, height-1)
		v.setDocument(c.Document, c.Placeholder, docs, width)
	case *desktop.About:
		v.vp.Height = max(1, height-1)
		v.setDocument(c.Document, c.Placeholder, docs, width)
	}
}

func (v *windowView) setDocument(doc *content.Document, placeholder string, docs *docRenderer, width int) {
	v.placeholder = placeholder
	if doc == nil {
		v.docKey, v.header = "", ""
		return
	}
	k := fmt.Sprintf("%p/%d", doc, width)
	if k == v.docKey {
		return
	}
	v.docKey = k
	v.header = docHeader(doc.Meta)
	v.vp.SetContent(docs.render(doc, width))
	v.vp.GotoTop()
}

// promptFor matches how entered lines are echoed: DOS prompts end in ">"
// and take no separator.
func promptFor(p string) string {
	if strings.HasSuffix(p, ">") {
		return p
	}
	return p + " "
}

func (m *Model) updateWindow(v *windowView, msg tea.KeyMsg) tea.Cmd {
	switch {
	case v.kind == wm.KindTerminal:
		return m.updateTerminal(v, msg)
	case v.isExplorer():
		return m.updateExplorer(v, msg)
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return cmd
}

func (m *Model) updateTerminal(v *windowView, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Select):
		line := v.input.Value()
		v.input.Reset()
		m.dispatch(desktop.Exec{ID: v.id, Line: line})
		return nil
	case key.Matches(msg, m.keys.Complete):
		rep, err := m.dispatch(desktop.Complete{ID: v.id, Input: v.input.Value()})
		if err == nil && rep.OK {
			v.input.SetValue(rep.Input)
			v.input.CursorEnd()
		}
		return nil
	case key.Matches(msg, m.keys.HistoryUp), key.Matches(msg, m.keys.HistoryDown):
		rep, err := m.dispatch(desktop.History{ID: v.id, Up: key.Matches(msg, m.keys.HistoryUp)})
		if err == nil && rep.OK {
			v.input.SetValue(rep.Input)
			v.input.CursorEnd()
		}
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (m *Model) updateExplorer(v *windowView, msg tea.KeyMsg) tea.Cmd {
	if v.searching {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			v.searching = false
			v.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		m.refresh()
		return cmd
	}

	if v.explorer == nil {
		return nil
	}
	items := v.explorer.Items
	switch {
	case key.Matches(msg, m.keys.Search):
		v.searching = true
		return v.search.Focus()
	case key.Matches(msg, m.keys.Up):
		v.cursor = max(0, v.cursor-1)
	case key.Matches(msg, m.keys.Down):
		v.cursor = max(0, min(len(items)-1, v.cursor+1))
	case key.Matches(msg, m.keys.ToggleView):
		next := desktop.ViewIcons
		if m.st.View == desktop.ViewIcons {
			next = desktop.ViewList
		}
		m.dispatch(desktop.SetView{View: next})
	case key.Matches(msg, m.keys.Select):
		if v.cursor >= len(items) {
			return nil
		}
		rep, err := m.dispatch(desktop.OpenDoc{Type: v.explorer.Type, Slug: items[v.cursor].Slug})
		if err == nil && rep.Window != nil {
			return m.focusWindow(rep.Window.ID)
		}
	}
	return nil
}

// viewBody renders the inside of the window panel.
func (v *windowView) viewBody(s Styles, st desktop.State, width, height int) string {
	switch {
	case v.kind == wm.KindTerminal:
		return v.viewTerminal(s, height)
	case v.isExplorer():
		return v.viewExplorer(s, st, width, height)
	}
	if v.placeholder != "" {
		return s.Placeholder.Render(v.placeholder)
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Subtle.Render(v.header), v.vp.View())
}

func (v *windowView) viewTerminal(s Styles, height int) string {
	var lines []string
	if v.term != nil {
		lines = v.term.Lines
	}
	if n := height - 1; len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := append(slices.Clone(lines), v.input.View())
	return s.Terminal.Render(strings.Join(out, "\n"))
}

func (v *windowView) viewExplorer(s Styles, st desktop.State, width, height int) string {
	ex := v.explorer
	if ex == nil {
		return ""
	}

	toolbar := fmt.Sprintf("%d of %d  [%s]", len(ex.Items), ex.Total, ex.View)
	if v.searching || v.search.Value() != "" {
		toolbar = v.search.View() + "  " + toolbar
	}
	rows := []string{s.Subtle.Render(toolbar)}

	if len(ex.Items) == 0 {
		rows = append(rows, s.Placeholder.Render("No matches."))
		return strings.Join(rows, "\n")
	}

	if ex.View == desktop.ViewIcons {
		rows = append(rows, v.iconGrid(s, st.Settings.TileSize, width)...)
	} else {
		for i, it := range ex.Items {
			line := truncate(fmt.Sprintf("%-28s %-10s %s", it.Title, it.Date, it.Summary), width)
			rows = append(rows, v.itemStyle(s, i).Render(line))
		}
	}

	// Keep the cursor on screen.
	if body := height - 1; len(rows)-1 > body {
		start := max(0, min(v.cursorRow(st.Settings.TileSize, width)-body+1, len(rows)-1-body))
		rows = append(rows[:1], rows[1+start:1+start+body]...)
	}
	return strings.Join(rows, "\n")
}

func (v *windowView) itemStyle(s Styles, i int) lipgloss.Style {
	if i == v.cursor {
		return s.ListSelected
	}
	return s.ListItem
}

// tileColumns converts the pixel tile size to a column count.
func tileColumns(tileSize, width int) (cols, cell int) {
	cell = max(12, tileSize/cellWidth)
	return max(1, width/cell), cell
}

func (v *windowView) iconGrid(s Styles, tileSize, width int) []string {
	cols, cell := tileColumns(tileSize, width)
	var rows []string
	for start := 0; start < len(v.explorer.Items); start += cols {
		var cells []string
		for i := start; i < min(start+cols, len(v.explorer.Items)); i++ {
			title := truncate(v.explorer.Items[i].Title, cell-2)
			cells = append(cells, v.itemStyle(s, i).Width(cell).Render(title))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return rows
}

func (v *windowView) cursorRow(tileSize, width int) int {
	if v.explorer.View == desktop.ViewIcons {
		cols, _ := tileColumns(tileSize, width)
		return v.cursor / cols
	}
	return v.cursor
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
