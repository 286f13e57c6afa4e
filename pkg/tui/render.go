package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"retrodesk/pkg/content"
)

// docRenderer renders document markdown for the terminal. The glamour
// renderer is rebuilt when the wrap width changes.
type docRenderer struct {
	style string
	width int
	r     *glamour.TermRenderer
}

func newDocRenderer(style string) *docRenderer {
	return &docRenderer{style: style}
}

func (dr *docRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	if dr.r != nil && dr.width == width {
		return dr.r, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if dr.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(dr.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	dr.r, dr.width = r, width
	return r, nil
}

// render falls back to wrapped plain text when glamour fails.
func (dr *docRenderer) render(doc *content.Document, width int) (out string) {
	src := doc.Markdown
	if src == "" {
		src = doc.Source
	}
	if strings.TrimSpace(src) == "" {
		return doc.Meta.Summary
	}

	plain := lipgloss.NewStyle().Width(width).Render(src)
	defer func() {
		if r := recover(); r != nil {
			out = plain
		}
	}()

	r, err := dr.renderer(width)
	if err != nil {
		return plain
	}
	rendered, err := r.Render(src)
	if err != nil {
		return plain
	}
	return strings.Trim(rendered, "\n")
}

// docHeader is the line above a document: date, reading time and tags.
func docHeader(m content.Meta) string {
	var parts []string
	if m.Date != "" {
		parts = append(parts, m.Date)
	}
	if rt := m.ReadingTime; rt != nil {
		parts = append(parts, rt.Text)
		if rt.Words > 0 {
			parts = append(parts, fmt.Sprintf("%s words", humanize.Comma(int64(rt.Words))))
		}
	}
	for _, t := range m.Tags {
		parts = append(parts, "#"+t)
	}
	return strings.Join(parts, " · ")
}
