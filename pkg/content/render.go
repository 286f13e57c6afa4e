package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns document bodies into HTML and into plain markdown.
// Component tags are expanded by the renderer itself; everything between
// them is markdown handled by goldmark.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub flavored markdown enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithXHTML(),
			),
		),
	}
}

// HTML renders a document body.
func (r *Renderer) HTML(src string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: render panic: %v", ErrMalformed, p)
		}
	}()

	nodes, err := parseComponents(src)
	if err != nil {
		return "", err
	}
	return r.renderNodes(nodes)
}

// renderNodes renders text runs as one markdown document. Each component
// is replaced by a placeholder word first and swapped back into the HTML
// afterwards, so inline components stay inside their paragraph.
func (r *Renderer) renderNodes(nodes []node) (string, error) {
	var md strings.Builder
	subs := make(map[string]string)
	for _, n := range nodes {
		if n.isText() {
			md.WriteString(n.text)
			continue
		}
		html, err := r.renderComponent(n)
		if err != nil {
			return "", err
		}
		token := fmt.Sprintf("rdcomp%04dz", len(subs))
		subs[token] = html
		md.WriteString(token)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md.String()), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	out := buf.String()
	for token, html := range subs {
		out = strings.ReplaceAll(out, "<p>"+token+"</p>", html)
		out = strings.ReplaceAll(out, token, html)
	}
	return out, nil
}

var componentTemplates = template.Must(template.New("components").Parse(`
{{define "box"}}<div class="md-{{.Class}}"><strong class="md-title">{{.Title}}</strong><div>{{.Body}}</div></div>{{end}}
{{define "figure"}}<figure class="md-figure"><img src="{{.Src}}" alt="{{.Alt}}"{{with .Width}} style="width: {{.}}"{{end}} />{{with .Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>{{end}}
{{define "details"}}<details class="md-details"{{if .Open}} open{{end}}><summary>{{.Summary}}</summary><div>{{.Body}}</div></details>{{end}}
{{define "tabs"}}<div class="md-tabs"><div class="md-tab-list" role="tablist">{{range .Tabs}}<button role="tab" data-tab="{{.ID}}"{{if .Active}} aria-selected="true"{{end}}>{{.Label}}</button>{{end}}</div>{{range .Tabs}}<section role="tabpanel" data-tab="{{.ID}}"{{if not .Active}} hidden{{end}}>{{.Body}}</section>{{end}}</div>{{end}}
{{define "columns"}}<div class="md-columns" style="display: flex; gap: {{.Gap}}">{{range .Columns}}<div style="flex: {{.Grow}} 1 0; min-width: 0">{{.Body}}</div>{{end}}</div>{{end}}
{{define "files"}}<div class="md-files"><div class="md-title">{{.Title}}</div><ul>{{range .Items}}<li>{{if .Href}}<a href="{{.Href}}" target="_blank" rel="noreferrer"><code>{{.Name}}</code></a>{{else}}<code>{{.Name}}</code>{{end}}{{with .Note}} <span>– {{.}}</span>{{end}}</li>{{end}}</ul></div>{{end}}
{{define "badge"}}<span class="md-badge md-badge-{{.Tone}}">{{.Text}}</span>{{end}}
{{define "kbd"}}<kbd>{{.Text}}</kbd>{{end}}
{{define "stat"}}<span class="md-stat"><span>{{.Label}}</span> <strong>{{.Value}}</strong></span>{{end}}
`))

var calloutTitles = map[string]string{
	"info":    "Info",
	"warn":    "Warning",
	"error":   "Error",
	"success": "Success",
}

var badgeTones = map[string]bool{"info": true, "success": true, "warn": true, "error": true}

type tab struct {
	ID     string
	Label  string
	Active bool
	Body   template.HTML
}

type column struct {
	Grow float64
	Body template.HTML
}

// FileItem is one entry of a Files component.
type FileItem struct {
	Name string `json:"name"`
	Href string `json:"href,omitempty"`
	Note string `json:"note,omitempty"`
}

func (r *Renderer) renderComponent(n node) (string, error) {
	var name string
	var data any

	body := func() (template.HTML, error) {
		html, err := r.renderNodes(n.children)
		return template.HTML(html), err
	}

	switch n.name {
	case "Callout":
		typ := n.attr("type", "info")
		title, ok := calloutTitles[typ]
		if !ok {
			typ, title = "info", calloutTitles["info"]
		}
		b, err := body()
		if err != nil {
			return "", err
		}
		name = "box"
		data = map[string]any{"Class": "callout md-callout-" + typ, "Title": n.attr("title", title), "Body": b}

	case "Note", "Warning":
		b, err := body()
		if err != nil {
			return "", err
		}
		name = "box"
		data = map[string]any{"Class": strings.ToLower(n.name), "Title": n.attr("title", n.name), "Body": b}

	case "Figure":
		name = "figure"
		data = map[string]any{
			"Src":     n.attr("src", ""),
			"Alt":     n.attr("alt", ""),
			"Caption": n.attr("caption", ""),
			"Width":   cssLength(n.attr("width", "")),
		}

	case "Details":
		b, err := body()
		if err != nil {
			return "", err
		}
		name = "details"
		data = map[string]any{"Summary": n.attr("summary", "Details"), "Open": n.attr("open", "") == "true", "Body": b}

	case "Tabs":
		tabs, err := r.renderTabs(n)
		if err != nil {
			return "", err
		}
		name = "tabs"
		data = map[string]any{"Tabs": tabs}

	case "TwoColumn":
		cols, err := r.renderColumns(n)
		if err != nil {
			return "", err
		}
		name = "columns"
		data = map[string]any{"Gap": cssLength(n.attr("gap", "16")), "Columns": cols}

	case "Files":
		items, err := parseFileItems(n)
		if err != nil {
			return "", err
		}
		name = "files"
		data = map[string]any{"Title": n.attr("title", "Files"), "Items": items}

	case "Badge":
		tone := n.attr("tone", "info")
		if !badgeTones[tone] {
			tone = "info"
		}
		name = "badge"
		data = map[string]any{"Tone": tone, "Text": plainText(n.children)}

	case "Kbd":
		name = "kbd"
		data = map[string]any{"Text": plainText(n.children)}

	case "Stat":
		name = "stat"
		data = map[string]any{"Label": n.attr("label", ""), "Value": n.attr("value", "")}

	default:
		// Unknown components and stray Tab or column wrappers render their
		// children only.
		return r.renderNodes(n.children)
	}

	var buf bytes.Buffer
	if err := componentTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render <%s>: %w", n.name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) renderTabs(n node) ([]tab, error) {
	active := n.attr("defaultId", "")
	var tabs []tab
	for _, c := range n.children {
		if c.name != "Tab" || c.attr("id", "") == "" {
			continue
		}
		html, err := r.renderNodes(c.children)
		if err != nil {
			return nil, err
		}
		id := c.attr("id", "")
		tabs = append(tabs, tab{ID: id, Label: c.attr("label", id), Body: template.HTML(html)})
	}
	if len(tabs) == 0 {
		return tabs, nil
	}

	idx := 0
	for i, t := range tabs {
		if t.ID == active {
			idx = i
		}
	}
	tabs[idx].Active = true
	return tabs, nil
}

func (r *Renderer) renderColumns(n node) ([]column, error) {
	left, right := parseRatio(n.attr("ratio", "1:1"))
	var sides [][]node
	for _, c := range n.children {
		switch c.name {
		case "TwoColumn.Left", "TwoColumn.Right", "Column":
			sides = append(sides, c.children)
		}
	}
	if len(sides) == 0 {
		sides = [][]node{n.children}
	}

	cols := make([]column, 0, len(sides))
	for i, side := range sides {
		html, err := r.renderNodes(side)
		if err != nil {
			return nil, err
		}
		grow := 1.0
		switch i {
		case 0:
			grow = left
		case 1:
			grow = right
		}
		cols = append(cols, column{Grow: grow, Body: template.HTML(html)})
	}
	return cols, nil
}

// parseRatio reads "a:b". Anything else is 1:1.
func parseRatio(ratio string) (float64, float64) {
	a, b, ok := strings.Cut(ratio, ":")
	if !ok {
		return 1, 1
	}
	x, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	y, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA != nil || errB != nil || x <= 0 || y <= 0 {
		return 1, 1
	}
	return x, y
}

// parseFileItems accepts a JSON array of names or FileItem objects in
// items or files, or a comma separated list of names.
func parseFileItems(n node) ([]FileItem, error) {
	raw := n.attr("items", n.attr("files", ""))
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if !strings.HasPrefix(raw, "[") {
		var items []FileItem
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				items = append(items, fileItem(name))
			}
		}
		return items, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: <Files> items: %v", ErrMalformed, err)
	}
	items := make([]FileItem, 0, len(elems))
	for _, e := range elems {
		var name string
		if err := json.Unmarshal(e, &name); err == nil {
			items = append(items, fileItem(name))
			continue
		}
		var item FileItem
		if err := json.Unmarshal(e, &item); err != nil {
			return nil, fmt.Errorf("%w: <Files> item: %v", ErrMalformed, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// fileItem links names that look like a URL or an absolute path.
func fileItem(name string) FileItem {
	item := FileItem{Name: name}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") || strings.HasPrefix(name, "/") {
		item.Href = name
	}
	return item
}

// cssLength turns a bare number into pixels.
func cssLength(v string) string {
	if v == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v + "px"
	}
	return v
}
