package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"retrodesk/pkg/desktop"
	"retrodesk/pkg/wm"
)

const windowControls = "[_][□][x]"

func (m *Model) View() string {
	s := m.styles
	bodyHeight := max(1, m.height-2)

	var body string
	if v := m.activeView(); v != nil && v.maximized {
		body = m.viewWindow(v)
	} else {
		left := m.viewIcons()
		if m.st.StartMenu {
			left = m.viewStartMenu()
		}
		left = lipgloss.NewStyle().Width(iconColumnWidth).Render(left)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, m.viewWindow(v))
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	status := m.viewHelp()
	switch {
	case m.st.Drag != nil:
		status = s.Status.Render(dragStatus(m.st.Drag))
	case m.status != "":
		status = s.Status.Render(m.status)
	}
	status = lipgloss.NewStyle().MaxWidth(m.width).Render(status)

	return lipgloss.JoinVertical(lipgloss.Left, body, status, m.viewTaskbar())
}

func dragStatus(d *desktop.DragState) string {
	verb := "Moving"
	if d.Mode == wm.DragResize {
		verb = "Resizing"
	}
	return fmt.Sprintf("%s: %d,%d %dx%d  arrows adjust, enter places, esc cancels",
		verb, d.Live.X, d.Live.Y, d.Live.W, d.Live.H)
}

func (m *Model) viewIcons() string {
	s := m.styles
	rows := make([]string, 0, len(m.st.Icons))
	for i, icon := range m.st.Icons {
		style := s.Icon
		if m.focus == focusDesktop && i == m.iconIdx {
			style = s.IconSelected
		}
		rows = append(rows, style.Render(truncate(icon.Name, iconColumnWidth-2)), "")
	}
	return strings.Join(rows, "\n")
}

func (m *Model) viewStartMenu() string {
	s := m.styles
	rows := []string{s.HelpKey.Render("retrodesk")}
	for i, icon := range m.st.Icons {
		style := s.MenuItem
		if i == m.menuIdx {
			style = s.MenuSelected
		}
		rows = append(rows, style.Render(truncate(icon.Name, iconColumnWidth-4)))
	}
	return s.Menu.Render(strings.Join(rows, "\n"))
}

func (m *Model) viewWindow(v *windowView) string {
	s := m.styles
	w, h := m.panelSize()
	if v == nil {
		hint := "Press ` for a terminal or F1 for the start menu."
		return lipgloss.Place(w+2, h+3, lipgloss.Center, lipgloss.Center, s.Desktop.Render(hint))
	}

	name := truncate(v.title, w-lipgloss.Width(windowControls)-1)
	gap := max(1, w-lipgloss.Width(name)-lipgloss.Width(windowControls))
	titleStyle := s.TitleInactive
	if m.focus == focusWindow {
		titleStyle = s.TitleActive
	}
	title := titleStyle.Width(w).Render(name + strings.Repeat(" ", gap) + windowControls)

	inner := lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(v.viewBody(s, m.st, w, h))
	return s.Window.Render(lipgloss.JoinVertical(lipgloss.Left, title, inner))
}

func (m *Model) viewTaskbar() string {
	s := m.styles
	start := s.Start
	if m.st.StartMenu {
		start = s.StartOpen
	}
	parts := []string{start.Render("Start")}
	for _, w := range m.st.Windows {
		style := s.TaskButton
		switch {
		case w.Minimized:
			style = s.TaskMinimized
		case w.ID == m.st.Active && !m.st.ShowingDesktop:
			style = s.TaskActive
		}
		parts = append(parts, style.Render(truncate(w.Title, 16)))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	clock := s.Clock.Render(m.st.Clock)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(clock))
	bar := left + strings.Repeat(" ", gap) + clock
	return s.Taskbar.MaxWidth(m.width).Render(bar)
}

func (m *Model) viewHelp() string {
	s := m.styles
	var parts []string
	for _, b := range m.keys.helpLine() {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
