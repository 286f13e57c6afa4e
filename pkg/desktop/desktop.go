package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"retrodesk/pkg/content"
	"retrodesk/pkg/shell"
	"retrodesk/pkg/store"
	"retrodesk/pkg/vfs"
	"retrodesk/pkg/wm"
)

const (
	// ClockInterval is how often the taskbar clock is refreshed.
	ClockInterval = 30 * time.Second
	// ClockFormat is the taskbar clock layout.
	ClockFormat = "03:04 PM"
	// ScrollbackLimit bounds the lines kept per terminal.
	ScrollbackLimit = 1000
)

// Config holds configuration for a Desktop.
type Config struct {
	Index *content.Index
	// Prefs defaults to an in-memory store.
	Prefs    *store.Prefs
	Logger   *zap.Logger
	Dialect  shell.Dialect
	Viewport wm.Viewport
	// Now defaults to time.Now.
	Now func() time.Time
	// ClockInterval defaults to ClockInterval.
	ClockInterval time.Duration
}

// Desktop is the application state behind every frontend. Events are
// applied one at a time, either through Dispatch or through the loop
// started by Run.
type Desktop struct {
	mu         sync.RWMutex
	wm         *wm.Manager
	index      *content.Index
	shell      *shell.Shell
	prefs      *store.Prefs
	logger     *zap.Logger
	now        func() time.Time
	interval   time.Duration
	sessions   map[string]*shell.Session
	scrollback map[string][]string
	terminal   shell.State
	view       ExplorerView
	settings   Settings
	startMenu  bool
	clock      string
	drag       *wm.Drag

	requests chan request

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

type request struct {
	ev   Event
	done chan response
}

type response struct {
	reply Reply
	err   error
}

// New creates a desktop and restores the persisted state from
// cfg.Prefs.
func New(cfg Config) *Desktop {
	d := &Desktop{
		index:      cfg.Index,
		prefs:      cfg.Prefs,
		logger:     cfg.Logger,
		now:        cfg.Now,
		interval:   cfg.ClockInterval,
		sessions:   make(map[string]*shell.Session),
		scrollback: make(map[string][]string),
		view:       ViewIcons,
		settings:   DefaultSettings,
		requests:   make(chan request),
		subs:       make(map[int]func(State)),
	}
	if d.index == nil {
		d.index, _ = content.NewIndex()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.prefs == nil {
		d.prefs = store.NewPrefs(store.NewMemory(), d.logger)
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.interval <= 0 {
		d.interval = ClockInterval
	}
	d.clock = d.now().Format(ClockFormat)

	d.shell = shell.New(shell.Config{
		Dialect: cfg.Dialect,
		Catalog: d.index,
		// Host calls arrive from Exec, which already holds d.mu.
		Host: shell.HostFunc(func(t content.Type, slug string) error {
			_, err := d.openDocLocked(t, slug)
			return err
		}),
		Commands: []shell.Command{{
			Name: "about",
			Run: func(*shell.Session, []string, []string) ([]string, error) {
				if _, err := d.openLocked(wm.KindAbout); err != nil {
					return nil, err
				}
				return []string{"Opening about"}, nil
			},
			Help: "Open the About window",
		}},
		Now: d.now,
	})

	d.wm = wm.NewManager(wm.Config{Viewport: cfg.Viewport, OnChange: d.saveWindows})
	d.restore()
	return d
}

func (d *Desktop) restore() {
	var snap wm.Snapshot
	if d.prefs.Load(KeyWindows, &snap.Windows) {
		d.prefs.Load(KeyActive, &snap.Active)
		if dropped := d.wm.Restore(snap); dropped > 0 {
			d.logger.Warn("dropped invalid windows from saved desktop", zap.Int("dropped", dropped))
		}
	}

	var view ExplorerView
	if d.prefs.Load(KeyExplorerView, &view) {
		if v, err := ParseView(string(view)); err == nil {
			d.view = v
		}
	}

	var settings Settings
	if d.prefs.Load(KeySettings, &settings) {
		if err := settings.Validate(); err == nil {
			d.settings = settings
		} else {
			d.logger.Warn("ignoring saved settings", zap.Error(err))
		}
	}

	d.prefs.Load(KeyTerminalHistory, &d.terminal.History)
	d.prefs.Load(KeyTerminalCwd, &d.terminal.Cwd)
	d.terminal.Cwd = vfs.Normalize(d.terminal.Cwd)

	for _, w := range d.wm.Windows() {
		if w.Kind == wm.KindTerminal {
			d.startSession(w.ID)
		}
	}
}

func (d *Desktop) saveWindows(snap wm.Snapshot) {
	d.prefs.Save(KeyWindows, snap.Windows)
	d.prefs.Save(KeyActive, snap.Active)
}

func (d *Desktop) saveTerminal(st shell.State) {
	d.terminal = st
	d.prefs.Save(KeyTerminalHistory, st.History)
	d.prefs.Save(KeyTerminalCwd, st.Cwd)
}

// Shell returns the interpreter terminals run on.
func (d *Desktop) Shell() *shell.Shell {
	return d.shell
}

// Index returns the content index.
func (d *Desktop) Index() *content.Index {
	return d.index
}

// Dispatch applies ev and returns its reply. Subscribers are notified of
// the new state when ev succeeds.
func (d *Desktop) Dispatch(ev Event) (Reply, error) {
	d.mu.Lock()
	reply, err := ev.apply(d)
	var st State
	if err == nil {
		st = d.stateLocked()
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Debug("event rejected", zap.String("event", eventName(ev)), zap.Error(err))
		return reply, err
	}
	d.logger.Debug("event applied", zap.String("event", eventName(ev)))
	d.notify(st)
	return reply, nil
}

func eventName(ev Event) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", ev), "desktop.")
}

// Run applies events sent with Send and refreshes the clock until ctx is
// done.
func (d *Desktop) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-d.requests:
			reply, err := d.Dispatch(req.ev)
			req.done <- response{reply, err}
		case <-ticker.C:
			d.Dispatch(Tick{})
		}
	}
}

// Send queues ev on the Run loop and waits for its reply.
func (d *Desktop) Send(ctx context.Context, ev Event) (Reply, error) {
	req := request{ev: ev, done: make(chan response, 1)}
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
	select {
	case r := <-req.done:
		return r.reply, r.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Subscribe registers fn to receive the state after every applied event.
// fn runs on the dispatching goroutine and must not block. The returned
// function unsubscribes.
func (d *Desktop) Subscribe(fn func(State)) func() {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		delete(d.subs, id)
	}
}

func (d *Desktop) notify(st State) {
	d.subMu.Lock()
	fns := make([]func(State), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// State returns the current desktop state.
func (d *Desktop) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stateLocked()
}

func (d *Desktop) stateLocked() State {
	snap := d.wm.Snapshot()
	var drag *DragState
	if d.drag != nil {
		drag = &DragState{ID: d.drag.ID(), Mode: d.drag.Mode(), Live: d.drag.Live()}
	}
	return State{
		Windows:        snap.Windows,
		Active:         snap.Active,
		ShowingDesktop: d.wm.ShowingDesktop(),
		StartMenu:      d.startMenu,
		Clock:          d.clock,
		View:           d.view,
		Settings:       d.settings,
		Icons:          Icons,
		Viewport:       d.wm.Viewport(),
		Drag:           drag,
	}
}

// Window returns a window with its content.
func (d *Desktop) Window(id string) (wm.Window, WindowContent, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	w, err := d.wm.GetWindow(id)
	if err != nil {
		return wm.Window{}, nil, err
	}
	return w, d.contentLocked(w), nil
}

// TerminalHistory returns the history of a terminal window, newest first.
func (d *Desktop) TerminalHistory(id string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ss, ok := d.sessions[id]; ok {
		return ss.History(), nil
	}
	w, err := d.wm.GetWindow(id)
	if err != nil {
		return nil, err
	}
	if w.Kind != wm.KindTerminal {
		return nil, fmt.Errorf("%w: %s", ErrNotTerminal, id)
	}
	return append([]string{}, d.terminal.History...), nil
}

func (d *Desktop) openLocked(kind wm.Kind) (wm.Window, error) {
	win, err := d.wm.Create(kind)
	if err != nil {
		return wm.Window{}, err
	}
	d.startMenu = false
	if kind == wm.KindTerminal {
		d.startSession(win.ID)
	}
	return win, nil
}

func (d *Desktop) openDocLocked(t content.Type, slug string) (wm.Window, error) {
	doc, err := d.index.Lookup(t, slug)
	if err != nil {
		return wm.Window{}, err
	}
	win, err := d.wm.OpenDoc(wm.Payload{Type: wm.DocType(doc.Type), Slug: doc.Meta.Slug}, doc.Meta.Title)
	if err != nil {
		return wm.Window{}, err
	}
	d.startMenu = false
	return win, nil
}

func (d *Desktop) startSession(id string) *shell.Session {
	ss := d.shell.NewSession(d.terminal)
	d.sessions[id] = ss
	d.scrollback[id] = append(d.shell.Banner(), "")
	return ss
}

func (d *Desktop) sessionLocked(id string) (*shell.Session, error) {
	if ss, ok := d.sessions[id]; ok {
		return ss, nil
	}
	w, err := d.wm.GetWindow(id)
	if err != nil {
		return nil, err
	}
	if w.Kind != wm.KindTerminal {
		return nil, fmt.Errorf("%w: %s", ErrNotTerminal, id)
	}
	return d.startSession(id), nil
}

func (d *Desktop) appendScrollback(id string, lines ...string) {
	sb := append(d.scrollback[id], lines...)
	if over := len(sb) - ScrollbackLimit; over > 0 {
		sb = sb[over:]
	}
	d.scrollback[id] = sb
}

// echoLine is how an entered line appears in the scrollback.
func echoLine(prompt, line string) string {
	if strings.HasSuffix(prompt, ">") {
		return prompt + line
	}
	return prompt + " " + line
}
