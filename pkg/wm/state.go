package wm

import "errors"

// Kind identifies which view a window hosts.
type Kind string

const (
	// KindProjects is the projects explorer.
	KindProjects Kind = "projects"
	// KindBlog is the blog explorer.
	KindBlog Kind = "blog"
	// KindAbout is the about panel.
	KindAbout Kind = "about"
	// KindTerminal hosts a shell session.
	KindTerminal Kind = "terminal"
	// KindDoc hosts a single document viewer.
	KindDoc Kind = "doc"
)

// Kinds lists every window kind in start menu order.
var Kinds = []Kind{KindProjects, KindBlog, KindAbout, KindTerminal, KindDoc}

// kindMeta holds the defaults a freshly created window of a kind starts from.
type kindMeta struct {
	Title string
	Icon  string
	Base  Bounds
}

var kindDefaults = map[Kind]kindMeta{
	KindProjects: {Title: "Projects", Icon: "Projects", Base: Bounds{X: 60, Y: 60, W: 520, H: 360}},
	KindBlog:     {Title: "Blog", Icon: "Blog", Base: Bounds{X: 200, Y: 120, W: 520, H: 360}},
	KindAbout:    {Title: "About", Icon: "About", Base: Bounds{X: 340, Y: 180, W: 420, H: 300}},
	KindTerminal: {Title: "Terminal", Icon: "Terminal", Base: Bounds{X: 100, Y: 260, W: 620, H: 240}},
	KindDoc:      {Title: "Document", Icon: "Doc", Base: Bounds{X: 160, Y: 120, W: 640, H: 420}},
}

// Valid reports whether k is a known window kind.
func (k Kind) Valid() bool {
	_, ok := kindDefaults[k]
	return ok
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Title returns the default window title for the kind.
func (k Kind) Title() string {
	return kindDefaults[k].Title
}

// Icon returns the icon name for the kind.
func (k Kind) Icon() string {
	return kindDefaults[k].Icon
}

// DocType discriminates the two document collections.
type DocType string

const (
	// DocProject refers to an entry in the projects collection.
	DocProject DocType = "project"
	// DocPost refers to an entry in the blog collection.
	DocPost DocType = "post"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == DocProject || t == DocPost
}

// Bounds is the position and size of a window in desktop pixels.
type Bounds struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x <= b.X+b.W &&
		y >= b.Y && y <= b.Y+b.H
}

// Payload is the document reference a doc window needs to re-render
// after a reload.
type Payload struct {
	Type DocType `json:"type"`
	Slug string  `json:"slug"`
}

// Window is a single desktop window record.
type Window struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Title     string   `json:"title"`
	Icon      string   `json:"icon"`
	Minimized bool     `json:"minimized"`
	Maximized bool     `json:"maximized"`
	Z         int      `json:"z"`
	Bounds    Bounds   `json:"bounds"`
	Payload   *Payload `json:"payload,omitempty"`
}

// clone returns a deep copy so callers never alias manager state.
func (w *Window) clone() Window {
	c := *w
	if w.Payload != nil {
		p := *w.Payload
		c.Payload = &p
	}
	return c
}

// Snapshot is the persisted form of the manager state.
type Snapshot struct {
	Windows []Window `json:"windows"`
	Active  string   `json:"active"`
}

var (
	// ErrWindowNotFound is returned when a window is not found.
	ErrWindowNotFound = errors.New("window not found")

	// ErrUnknownKind is returned when creating a window of an unknown kind.
	ErrUnknownKind = errors.New("unknown window kind")

	// ErrInvalidPayload is returned when a doc window is opened without a usable payload.
	ErrInvalidPayload = errors.New("invalid document payload")

	// ErrMaximized is returned when a drag is started on a maximized window.
	ErrMaximized = errors.New("window is maximized")

	// ErrUnknownDragMode is returned for a drag mode other than move or
	// resize.
	ErrUnknownDragMode = errors.New("unknown drag mode")
)
