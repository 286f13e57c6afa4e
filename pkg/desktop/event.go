package desktop

import (
	"errors"
	"fmt"

	"retrodesk/pkg/content"
	"retrodesk/pkg/shell"
	"retrodesk/pkg/wm"
)

var (
	// ErrNotTerminal is returned when a terminal event targets another kind
	// of window.
	ErrNotTerminal = errors.New("window is not a terminal")

	// ErrInvalidEvent is returned for events with unusable arguments.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrNoDrag is returned for drag events while no drag is in progress.
	ErrNoDrag = errors.New("no drag in progress")
)

// Event is a user action applied to the desktop. The set is closed: use
// one of the types below.
type Event interface {
	apply(d *Desktop) (Reply, error)
}

// Reply carries what an event produced besides the new State.
type Reply struct {
	Window *wm.Window    `json:"window,omitempty"`
	Exec   *shell.Result `json:"exec,omitempty"`
	// Input is the new input line after Complete or History.
	Input string `json:"input,omitempty"`
	// OK reports whether Complete or History changed the input.
	OK             bool `json:"ok"`
	ShowingDesktop bool `json:"showingDesktop,omitempty"`
}

// Open creates a window of Kind, as from a desktop icon or the start
// menu.
type Open struct {
	Kind wm.Kind `json:"kind"`
}

// OpenDoc opens a document viewer.
type OpenDoc struct {
	Type content.Type `json:"type"`
	Slug string       `json:"slug"`
}

// Activate focuses a window.
type Activate struct {
	ID string `json:"id"`
}

// ToggleTask is a click on a taskbar button.
type ToggleTask struct {
	ID string `json:"id"`
}

// Minimize hides a window. With Toggle set a minimized window is
// restored and raised instead.
type Minimize struct {
	ID     string `json:"id"`
	Toggle bool   `json:"toggle,omitempty"`
}

// Maximize toggles the maximized state.
type Maximize struct {
	ID string `json:"id"`
}

// Close removes a window.
type Close struct {
	ID string `json:"id"`
}

// Bounds commits a moved or resized window.
type Bounds struct {
	ID   string    `json:"id"`
	Rect wm.Bounds `json:"bounds"`
}

// DragStart begins moving or resizing a window with the pointer at
// (X, Y). Without an ID the topmost window under the pointer is used.
// Only one drag runs at a time; starting another drops the first.
type DragStart struct {
	ID   string      `json:"id,omitempty"`
	Mode wm.DragMode `json:"mode"`
	X    int         `json:"x"`
	Y    int         `json:"y"`
}

// DragMove reports the pointer position during a drag.
type DragMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DragEnd commits the live rect of the drag.
type DragEnd struct{}

// DragCancel drops the drag and leaves the window where it was.
type DragCancel struct{}

// ShowDesktop toggles show desktop.
type ShowDesktop struct{}

// Exec runs a line in a terminal window.
type Exec struct {
	ID   string `json:"id"`
	Line string `json:"line"`
}

// Complete is a Tab press in a terminal window.
type Complete struct {
	ID    string `json:"id"`
	Input string `json:"input"`
}

// History is an Up or Down press in a terminal window.
type History struct {
	ID string `json:"id"`
	Up bool   `json:"up"`
}

// SetView switches every explorer between icons and list.
type SetView struct {
	View ExplorerView `json:"view"`
}

// SetSettings replaces the settings.
type SetSettings struct {
	Settings Settings `json:"settings"`
}

// StartMenu opens or closes the start menu. A nil Open toggles it.
type StartMenu struct {
	Open *bool `json:"open,omitempty"`
}

// Hotkey is a global key press. "`" opens a terminal, "Escape" closes
// the start menu.
type Hotkey struct {
	Key string `json:"key"`
}

// Resize reports a new viewport size.
type Resize struct {
	Viewport wm.Viewport `json:"viewport"`
}

// Tick refreshes the taskbar clock.
type Tick struct{}

// Reload tells the desktop the content index changed.
type Reload struct{}

func (e Open) apply(d *Desktop) (Reply, error) {
	win, err := d.openLocked(e.Kind)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Window: &win}, nil
}

func (e OpenDoc) apply(d *Desktop) (Reply, error) {
	win, err := d.openDocLocked(e.Type, e.Slug)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Window: &win}, nil
}

func (e Activate) apply(d *Desktop) (Reply, error) {
	return Reply{}, d.wm.Activate(e.ID)
}

func (e ToggleTask) apply(d *Desktop) (Reply, error) {
	d.startMenu = false
	return Reply{}, d.wm.ToggleTask(e.ID)
}

func (e Minimize) apply(d *Desktop) (Reply, error) {
	if e.Toggle {
		return Reply{}, d.wm.ToggleMinimize(e.ID)
	}
	return Reply{}, d.wm.Minimize(e.ID)
}

func (e Maximize) apply(d *Desktop) (Reply, error) {
	return Reply{}, d.wm.ToggleMaximize(e.ID)
}

func (e Close) apply(d *Desktop) (Reply, error) {
	if err := d.wm.Close(e.ID); err != nil {
		return Reply{}, err
	}
	delete(d.sessions, e.ID)
	delete(d.scrollback, e.ID)
	if d.drag != nil && d.drag.ID() == e.ID {
		d.drag = nil
	}
	return Reply{}, nil
}

func (e Bounds) apply(d *Desktop) (Reply, error) {
	win, err := d.wm.UpdateBounds(e.ID, e.Rect)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Window: &win}, nil
}

func (e DragStart) apply(d *Desktop) (Reply, error) {
	id := e.ID
	if id == "" {
		win, ok := d.wm.WindowAt(e.X, e.Y)
		if !ok {
			return Reply{}, fmt.Errorf("%w: no window at %d,%d", ErrInvalidEvent, e.X, e.Y)
		}
		id = win.ID
	}
	drag, err := d.wm.BeginDrag(id, e.Mode, e.X, e.Y)
	if err != nil {
		return Reply{}, err
	}
	d.drag = drag
	d.startMenu = false
	return d.dragReply()
}

func (e DragMove) apply(d *Desktop) (Reply, error) {
	if d.drag == nil {
		return Reply{}, ErrNoDrag
	}
	d.drag.Move(e.X, e.Y)
	return d.dragReply()
}

func (DragEnd) apply(d *Desktop) (Reply, error) {
	if d.drag == nil {
		return Reply{}, ErrNoDrag
	}
	win, err := d.drag.End()
	d.drag = nil
	if err != nil {
		return Reply{}, err
	}
	return Reply{Window: &win}, nil
}

func (DragCancel) apply(d *Desktop) (Reply, error) {
	if d.drag == nil {
		return Reply{}, ErrNoDrag
	}
	d.drag = nil
	return Reply{}, nil
}

// dragReply returns the dragged window drawn at its live rect.
func (d *Desktop) dragReply() (Reply, error) {
	win, err := d.wm.GetWindow(d.drag.ID())
	if err != nil {
		d.drag = nil
		return Reply{}, err
	}
	win.Bounds = d.drag.Live()
	return Reply{Window: &win}, nil
}

func (ShowDesktop) apply(d *Desktop) (Reply, error) {
	d.startMenu = false
	return Reply{ShowingDesktop: d.wm.ShowDesktop()}, nil
}

func (e Exec) apply(d *Desktop) (Reply, error) {
	ss, err := d.sessionLocked(e.ID)
	if err != nil {
		return Reply{}, err
	}
	res := ss.Exec(e.Line)
	if res.Clear {
		d.scrollback[e.ID] = nil
	} else {
		d.appendScrollback(e.ID, append([]string{echoLine(res.Prompt, e.Line)}, res.Lines...)...)
	}
	d.saveTerminal(ss.State())
	return Reply{Exec: &res}, nil
}

func (e Complete) apply(d *Desktop) (Reply, error) {
	ss, err := d.sessionLocked(e.ID)
	if err != nil {
		return Reply{}, err
	}
	line, ok := ss.Complete(e.Input)
	return Reply{Input: line, OK: ok}, nil
}

func (e History) apply(d *Desktop) (Reply, error) {
	ss, err := d.sessionLocked(e.ID)
	if err != nil {
		return Reply{}, err
	}
	if e.Up {
		line, ok := ss.HistoryUp()
		return Reply{Input: line, OK: ok}, nil
	}
	return Reply{Input: ss.HistoryDown(), OK: true}, nil
}

func (e SetView) apply(d *Desktop) (Reply, error) {
	v, err := ParseView(string(e.View))
	if err != nil {
		return Reply{}, err
	}
	d.view = v
	d.prefs.Save(KeyExplorerView, v)
	return Reply{}, nil
}

func (e SetSettings) apply(d *Desktop) (Reply, error) {
	if err := e.Settings.Validate(); err != nil {
		return Reply{}, err
	}
	d.settings = e.Settings
	d.prefs.Save(KeySettings, e.Settings)
	return Reply{}, nil
}

func (e StartMenu) apply(d *Desktop) (Reply, error) {
	if e.Open == nil {
		d.startMenu = !d.startMenu
	} else {
		d.startMenu = *e.Open
	}
	return Reply{}, nil
}

func (e Hotkey) apply(d *Desktop) (Reply, error) {
	switch e.Key {
	case "`":
		return Open{Kind: wm.KindTerminal}.apply(d)
	case "Escape", "esc":
		d.startMenu = false
		return Reply{}, nil
	}
	return Reply{}, fmt.Errorf("%w: unbound hotkey %q", ErrInvalidEvent, e.Key)
}

func (e Resize) apply(d *Desktop) (Reply, error) {
	if e.Viewport.Width <= 0 || e.Viewport.Height <= 0 {
		return Reply{}, fmt.Errorf("%w: viewport %dx%d", ErrInvalidEvent, e.Viewport.Width, e.Viewport.Height)
	}
	d.wm.SetViewport(e.Viewport)
	return Reply{}, nil
}

func (Tick) apply(d *Desktop) (Reply, error) {
	d.clock = d.now().Format(ClockFormat)
	return Reply{}, nil
}

func (Reload) apply(*Desktop) (Reply, error) {
	return Reply{}, nil
}
