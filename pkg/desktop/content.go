package desktop

import (
	"retrodesk/pkg/content"
	"retrodesk/pkg/wm"
)

// Placeholders shown instead of a document body.
const (
	MsgCannotRestore = "This document cannot be restored. Please reopen it from the Explorer."
	MsgNotFound      = "Not found or invalid document."
	MsgRenderError   = "Error rendering document."
	MsgNoAbout       = "Nothing to see here yet."
)

// WindowContent is what a window shows. It is one of *Explorer, *Doc,
// *Terminal or *About.
type WindowContent interface {
	windowContent()
}

// Explorer lists one collection.
type Explorer struct {
	Type  content.Type   `json:"type"`
	View  ExplorerView   `json:"view"`
	Query string         `json:"query,omitempty"`
	Items []content.Meta `json:"items"`
	// Total is the collection size before filtering.
	Total int `json:"total"`
}

// Doc is a document viewer. Either Document or Placeholder is set.
type Doc struct {
	Payload     *wm.Payload       `json:"payload,omitempty"`
	Document    *content.Document `json:"document,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
}

// Terminal is a shell session with its scrollback.
type Terminal struct {
	ID     string   `json:"id"`
	Prompt string   `json:"prompt"`
	Cwd    string   `json:"cwd"`
	Lines  []string `json:"lines"`
}

// About is the about panel.
type About struct {
	Document    *content.Document `json:"document,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
}

func (*Explorer) windowContent() {}
func (*Doc) windowContent()      {}
func (*Terminal) windowContent() {}
func (*About) windowContent()    {}

// KindName returns the JSON discriminator of c.
func KindName(c WindowContent) string {
	switch c.(type) {
	case *Explorer:
		return "explorer"
	case *Doc:
		return "doc"
	case *Terminal:
		return "terminal"
	case *About:
		return "about"
	}
	return ""
}

// typeForKind maps explorer window kinds to their collection.
func typeForKind(k wm.Kind) (content.Type, bool) {
	switch k {
	case wm.KindProjects:
		return content.TypeProject, true
	case wm.KindBlog:
		return content.TypePost, true
	}
	return "", false
}

// ContentFor returns what window w shows.
func (d *Desktop) ContentFor(w wm.Window) WindowContent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.contentLocked(w)
}

func (d *Desktop) contentLocked(w wm.Window) WindowContent {
	if t, ok := typeForKind(w.Kind); ok {
		return d.explorerLocked(t, "")
	}

	switch w.Kind {
	case wm.KindTerminal:
		return d.terminalLocked(w.ID)
	case wm.KindAbout:
		if doc, ok := d.index.About(); ok {
			return &About{Document: doc}
		}
		return &About{Placeholder: MsgNoAbout}
	}
	return d.docContent(w.Payload)
}

func (d *Desktop) docContent(p *wm.Payload) *Doc {
	if p == nil {
		return &Doc{Placeholder: MsgCannotRestore}
	}
	out := &Doc{Payload: p}
	doc, err := d.index.GetBySlug(content.Type(p.Type), p.Slug)
	switch {
	case err != nil:
		out.Placeholder = MsgNotFound
	case doc.RenderErr != nil:
		out.Placeholder = MsgRenderError
	default:
		out.Document = doc
	}
	return out
}

// Explorer lists collection t filtered by q.
func (d *Desktop) Explorer(t content.Type, q string) *Explorer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.explorerLocked(t, q)
}

func (d *Desktop) explorerLocked(t content.Type, q string) *Explorer {
	return &Explorer{
		Type:  t,
		View:  d.view,
		Query: q,
		Items: d.index.Search(t, q),
		Total: d.index.Len(t),
	}
}

func (d *Desktop) terminalLocked(id string) *Terminal {
	t := &Terminal{ID: id, Lines: []string{}}
	if ss, ok := d.sessions[id]; ok {
		t.Prompt = ss.Prompt()
		t.Cwd = ss.Cwd()
		t.Lines = append(t.Lines, d.scrollback[id]...)
	}
	return t
}
