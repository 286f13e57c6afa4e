package wm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Manager manages the desktop's windows.
type Manager struct {
	mu       sync.RWMutex
	windows  []*Window // creation order, which is also taskbar order
	active   string
	zCounter int
	idCount  int
	viewport Viewport

	showingDesktop  bool
	lastUnminimized []string

	onChange func(Snapshot)
}

// Config holds configuration for the window manager.
type Config struct {
	Viewport Viewport
	// OnChange is called after every successful mutation with the new
	// state. It runs outside the manager lock.
	OnChange func(Snapshot)
}

// NewManager creates a new window manager with the given configuration.
func NewManager(cfg Config) *Manager {
	vp := cfg.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = DefaultViewport
	}
	return &Manager{
		windows:  make([]*Window, 0),
		zCounter: BaseZ,
		viewport: vp,
		onChange: cfg.OnChange,
	}
}

// update runs fn under the write lock and notifies OnChange on success.
func (m *Manager) update(fn func() error) error {
	m.mu.Lock()
	err := fn()
	var snap Snapshot
	if err == nil {
		snap = m.snapshotLocked()
	}
	m.mu.Unlock()

	if err == nil && m.onChange != nil {
		m.onChange(snap)
	}
	return err
}

func (m *Manager) lookup(id string) (*Window, error) {
	for _, w := range m.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWindowNotFound, id)
}

func (m *Manager) nextZ() int {
	m.zCounter++
	return m.zCounter
}

func (m *Manager) countKind(kind Kind) int {
	n := 0
	for _, w := range m.windows {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// newWindowLocked builds and registers a window, making it active.
func (m *Manager) newWindowLocked(kind Kind, title string, offset int, payload *Payload) *Window {
	meta := kindDefaults[kind]
	bounds, maximize := InitialBounds(meta.Base, offset, m.viewport)

	m.idCount++
	win := &Window{
		ID:        kind.String() + "-" + strconv.Itoa(m.idCount),
		Kind:      kind,
		Title:     title,
		Icon:      meta.Icon,
		Maximized: maximize,
		Z:         m.nextZ(),
		Bounds:    bounds,
		Payload:   payload,
	}
	m.windows = append(m.windows, win)
	m.active = win.ID
	return win
}

// Create opens a new window of the given kind and focuses it. Each
// existing window of the same kind shifts the new one by CascadeStep.
func (m *Manager) Create(kind Kind) (Window, error) {
	if !kind.Valid() {
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind == KindDoc {
		return Window{}, fmt.Errorf("%w: doc windows need a payload", ErrInvalidPayload)
	}

	var created Window
	err := m.update(func() error {
		offset := CascadeStep * m.countKind(kind)
		created = m.newWindowLocked(kind, kind.Title(), offset, nil).clone()
		return nil
	})
	return created, err
}

// OpenDoc opens a document window for the payload. title falls back to
// the slug when empty.
func (m *Manager) OpenDoc(p Payload, title string) (Window, error) {
	if !p.Type.Valid() || strings.TrimSpace(p.Slug) == "" {
		return Window{}, fmt.Errorf("%w: %+v", ErrInvalidPayload, p)
	}
	if title == "" {
		title = p.Slug
	}

	var created Window
	err := m.update(func() error {
		created = m.newWindowLocked(KindDoc, title, CascadeStep, &p).clone()
		return nil
	})
	return created, err
}

// Activate restores a window if minimized, raises it and focuses it.
func (m *Manager) Activate(id string) error {
	return m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		win.Minimized = false
		win.Z = m.nextZ()
		m.active = id
		return nil
	})
}

// ToggleTask handles a click on the window's taskbar button: the active,
// visible window is minimized, any other window is restored and raised.
func (m *Manager) ToggleTask(id string) error {
	return m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		if m.active == id && !win.Minimized {
			win.Minimized = true
			return nil
		}
		win.Minimized = false
		win.Z = m.nextZ()
		m.active = id
		return nil
	})
}

// Minimize hides a window. Focus is left untouched.
func (m *Manager) Minimize(id string) error {
	return m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		win.Minimized = true
		return nil
	})
}

// ToggleMinimize minimizes a visible window or restores and raises a
// minimized one.
func (m *Manager) ToggleMinimize(id string) error {
	return m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		if !win.Minimized {
			win.Minimized = true
			return nil
		}
		win.Minimized = false
		win.Z = m.nextZ()
		m.active = id
		return nil
	})
}

// ToggleMaximize flips the maximized flag. The stored bounds are kept so
// un-maximizing returns to them.
func (m *Manager) ToggleMaximize(id string) error {
	return m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		win.Maximized = !win.Maximized
		return nil
	})
}

// UpdateBounds commits a new rect for a window, clamped to the viewport.
func (m *Manager) UpdateBounds(id string, b Bounds) (Window, error) {
	var updated Window
	err := m.update(func() error {
		win, err := m.lookup(id)
		if err != nil {
			return err
		}
		win.Bounds = ClampBounds(b, m.viewport)
		updated = win.clone()
		return nil
	})
	return updated, err
}

// Close removes a window. If it was active, focus moves to the remaining
// window with the highest z, or to nothing.
func (m *Manager) Close(id string) error {
	return m.update(func() error {
		idx := -1
		for i, w := range m.windows {
			if w.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrWindowNotFound, id)
		}
		m.windows = append(m.windows[:idx], m.windows[idx+1:]...)

		if m.active == id {
			m.active = ""
			top := -1
			for _, w := range m.windows {
				if w.Z > top {
					top = w.Z
					m.active = w.ID
				}
			}
		}
		return nil
	})
}

// ShowDesktop toggles "show desktop". The first call remembers which
// windows were visible and minimizes everything; the next call shows
// exactly that set again and minimizes the rest. It returns whether the
// desktop is now being shown.
func (m *Manager) ShowDesktop() bool {
	var showing bool
	_ = m.update(func() error {
		if !m.showingDesktop {
			m.lastUnminimized = m.lastUnminimized[:0]
			for _, w := range m.windows {
				if !w.Minimized {
					m.lastUnminimized = append(m.lastUnminimized, w.ID)
				}
				w.Minimized = true
			}
			m.active = ""
		} else {
			restore := make(map[string]bool, len(m.lastUnminimized))
			for _, id := range m.lastUnminimized {
				restore[id] = true
			}
			top := -1
			for _, w := range m.windows {
				w.Minimized = !restore[w.ID]
				if !w.Minimized && w.Z > top {
					top = w.Z
					m.active = w.ID
				}
			}
		}
		m.showingDesktop = !m.showingDesktop
		showing = m.showingDesktop
		return nil
	})
	return showing
}

// ShowingDesktop reports whether "show desktop" is currently engaged.
func (m *Manager) ShowingDesktop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.showingDesktop
}

// GetWindow returns a copy of a window by ID.
func (m *Manager) GetWindow(id string) (Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	win, err := m.lookup(id)
	if err != nil {
		return Window{}, err
	}
	return win.clone(), nil
}

// Windows returns copies of all windows in taskbar order.
func (m *Manager) Windows() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Window, len(m.windows))
	for i, w := range m.windows {
		out[i] = w.clone()
	}
	return out
}

// Stack returns the visible windows ordered bottom to top.
func (m *Manager) Stack() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		if !w.Minimized {
			out = append(out, w.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// WindowAt returns the topmost visible window containing the point.
// Maximized windows cover everything above the taskbar.
func (m *Manager) WindowAt(x, y int) (Window, bool) {
	vp := m.Viewport()
	full := Bounds{W: vp.Width, H: vp.UsableHeight()}
	stack := m.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		b := stack[i].Bounds
		if stack[i].Maximized {
			b = full
		}
		if b.Contains(x, y) {
			return stack[i], true
		}
	}
	return Window{}, false
}

// Active returns the focused window ID, or "" when nothing is focused.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// IsActive reports whether id is focused and visible, which is how the
// taskbar decides to draw a button pressed.
func (m *Manager) IsActive(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active != id {
		return false
	}
	win, err := m.lookup(id)
	return err == nil && !win.Minimized
}

// SetViewport records the frontend's desktop size.
func (m *Manager) SetViewport(vp Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = vp
}

// Viewport returns the desktop size used for layout.
func (m *Manager) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// Snapshot returns the persistable state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{Windows: make([]Window, len(m.windows)), Active: m.active}
	for i, w := range m.windows {
		snap.Windows[i] = w.clone()
	}
	return snap
}

// Restore replaces the window list with a persisted snapshot. Windows of
// unknown kind and duplicate IDs are dropped. The z and id counters resume
// above the highest values found so new windows still stack on top. It
// returns the number of windows dropped.
func (m *Manager) Restore(snap Snapshot) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	seen := make(map[string]bool, len(snap.Windows))
	m.windows = make([]*Window, 0, len(snap.Windows))
	m.zCounter = BaseZ
	m.idCount = 0
	for _, w := range snap.Windows {
		if !w.Kind.Valid() || w.ID == "" || seen[w.ID] {
			dropped++
			continue
		}
		seen[w.ID] = true
		win := w.clone()
		m.windows = append(m.windows, &win)

		m.zCounter = max(m.zCounter, w.Z)
		if _, suffix, ok := strings.Cut(w.ID, "-"); ok {
			if n, err := strconv.Atoi(suffix); err == nil {
				m.idCount = max(m.idCount, n)
			}
		}
	}

	m.active = ""
	if seen[snap.Active] {
		m.active = snap.Active
	}
	m.showingDesktop = false
	m.lastUnminimized = nil
	return dropped
}
