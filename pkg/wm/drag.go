package wm

import "fmt"

// DragMode selects what a pointer session changes.
type DragMode int

const (
	// DragMove moves the window by its title bar.
	DragMove DragMode = iota
	// DragResize resizes the window from its bottom-right grip.
	DragResize
)

// String returns a string representation of the drag mode.
func (d DragMode) String() string {
	switch d {
	case DragMove:
		return "move"
	case DragResize:
		return "resize"
	default:
		return "unknown"
	}
}

// ParseDragMode parses "move" or "resize".
func ParseDragMode(s string) (DragMode, error) {
	switch s {
	case "move", "":
		return DragMove, nil
	case "resize":
		return DragResize, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDragMode, s)
}

// MarshalText encodes the mode by name.
func (d DragMode) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "move" or "resize".
func (d *DragMode) UnmarshalText(b []byte) error {
	mode, err := ParseDragMode(string(b))
	if err != nil {
		return err
	}
	*d = mode
	return nil
}

// Drag is an in-flight pointer interaction. Move updates the live rect for
// visual feedback only; nothing is committed to the manager until End.
type Drag struct {
	m        *Manager
	id       string
	mode     DragMode
	viewport Viewport
	start    Bounds
	originX  int
	originY  int
	live     Bounds
	changed  bool
}

// BeginDrag starts a move or resize session at pointer position (px, py).
// The window is focused first. Maximized windows cannot be dragged.
func (m *Manager) BeginDrag(id string, mode DragMode, px, py int) (*Drag, error) {
	if err := m.Activate(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	win, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if win.Maximized {
		return nil, ErrMaximized
	}
	return &Drag{
		m:        m,
		id:       id,
		mode:     mode,
		viewport: m.viewport,
		start:    win.Bounds,
		originX:  px,
		originY:  py,
		live:     win.Bounds,
	}, nil
}

// ID returns the window being dragged.
func (d *Drag) ID() string {
	return d.id
}

// Mode returns the drag mode.
func (d *Drag) Mode() DragMode {
	return d.mode
}

// Move applies the pointer position and returns the live rect.
func (d *Drag) Move(px, py int) Bounds {
	dx := px - d.originX
	dy := py - d.originY
	usableH := d.viewport.UsableHeight()

	switch d.mode {
	case DragResize:
		maxW := max(MinWidth, d.viewport.Width-d.start.X)
		maxH := max(MinHeight, usableH-d.start.Y)
		d.live.W = clamp(d.start.W+dx, MinWidth, maxW)
		d.live.H = clamp(d.start.H+dy, MinHeight, maxH)
	default:
		d.live.X = clamp(d.start.X+dx, 0, max(0, d.viewport.Width-d.start.W))
		d.live.Y = clamp(d.start.Y+dy, 0, max(0, usableH-d.start.H))
	}
	d.changed = true
	return d.live
}

// Live returns the rect that should currently be drawn.
func (d *Drag) Live() Bounds {
	return d.live
}

// End commits the session. A session without any movement leaves the
// window where it was.
func (d *Drag) End() (Window, error) {
	if !d.changed {
		return d.m.GetWindow(d.id)
	}
	return d.m.UpdateBounds(d.id, d.live)
}
