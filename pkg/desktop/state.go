package desktop

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"retrodesk/pkg/wm"
)

// Preference keys.
const (
	KeyWindows         = "desktop:wins"
	KeyActive          = "desktop:active"
	KeySettings        = "desktop:settings"
	KeyExplorerView    = "explorer:view"
	KeyTerminalHistory = "terminal:history"
	KeyTerminalCwd     = "terminal:cwd"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// ExplorerView is how explorer windows lay out their items.
type ExplorerView string

const (
	ViewIcons ExplorerView = "icons"
	ViewList  ExplorerView = "list"
)

// ParseView parses "icons" or "list".
func ParseView(s string) (ExplorerView, error) {
	switch v := ExplorerView(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewIcons, ViewList:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown explorer view %q", ErrInvalidSettings, s)
}

// Themes lists the accepted theme names.
var Themes = []string{"win95", "high-contrast", "dark"}

// IconSizes lists the accepted desktop icon sizes in pixels.
var IconSizes = []int{16, 24, 32, 48}

// Settings are the user adjustable desktop options.
type Settings struct {
	Wallpaper string `json:"wallpaper"`
	// TileSize is the minimum width of an explorer tile in icons view.
	TileSize int    `json:"tileSize"`
	IconSize int    `json:"iconSize"`
	Sound    bool   `json:"sound"`
	Theme    string `json:"theme"`
}

// DefaultSettings are used until the user changes anything.
var DefaultSettings = Settings{
	Wallpaper: "/wallpaper.svg",
	TileSize:  220,
	IconSize:  32,
	Sound:     true,
	Theme:     "win95",
}

// Validate checks every field.
func (s Settings) Validate() error {
	if s.TileSize < 120 || s.TileSize > 480 {
		return fmt.Errorf("%w: tile size %d out of range 120-480", ErrInvalidSettings, s.TileSize)
	}
	if !slices.Contains(IconSizes, s.IconSize) {
		return fmt.Errorf("%w: icon size %d", ErrInvalidSettings, s.IconSize)
	}
	if !slices.Contains(Themes, s.Theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalidSettings, s.Theme)
	}
	if strings.ContainsAny(s.Wallpaper, "\"'()\n") {
		return fmt.Errorf("%w: wallpaper url", ErrInvalidSettings)
	}
	return nil
}

// Icon is a desktop shortcut. The same list backs the start menu.
type Icon struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Kind wm.Kind `json:"kind"`
	Icon string  `json:"icon"`
}

// Icons are the desktop shortcuts in display order.
var Icons = []Icon{
	{ID: "desk-projects", Name: "Projects", Kind: wm.KindProjects, Icon: "Projects"},
	{ID: "desk-blog", Name: "Blog", Kind: wm.KindBlog, Icon: "Blog"},
	{ID: "desk-about", Name: "About", Kind: wm.KindAbout, Icon: "About"},
	{ID: "desk-terminal", Name: "Terminal", Kind: wm.KindTerminal, Icon: "Terminal"},
}

// State is everything a frontend needs to draw the desktop, except the
// window contents.
type State struct {
	Windows        []wm.Window  `json:"windows"`
	Active         string       `json:"active"`
	ShowingDesktop bool         `json:"showingDesktop"`
	StartMenu      bool         `json:"startMenu"`
	Clock          string       `json:"clock"`
	View           ExplorerView `json:"explorerView"`
	Settings       Settings     `json:"settings"`
	Icons          []Icon       `json:"icons"`
	Viewport       wm.Viewport  `json:"viewport"`
	// Drag is set while a window is being moved or resized.
	Drag *DragState `json:"drag,omitempty"`
}

// DragState is the window being dragged and where it is drawn.
type DragState struct {
	ID   string      `json:"id"`
	Mode wm.DragMode `json:"mode"`
	Live wm.Bounds   `json:"live"`
}

// Stack returns the visible windows bottom to top.
func (s State) Stack() []wm.Window {
	var out []wm.Window
	for _, w := range s.Windows {
		if !w.Minimized {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b wm.Window) int { return a.Z - b.Z })
	return out
}
