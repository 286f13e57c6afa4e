package wm

const (
	// TaskbarHeight is reserved at the bottom of the viewport.
	TaskbarHeight = 40
	// MinWidth is the smallest width a window can be resized to.
	MinWidth = 260
	// MinHeight is the smallest height a window can be resized to.
	MinHeight = 160
	// CascadeStep offsets each additional window of the same kind.
	CascadeStep = 24
	// BaseZ is the z value below every window.
	BaseZ = 10

	defaultWidth  = 480
	defaultHeight = 300
)

// Viewport is the size of the visible desktop, taskbar included.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport is used until a frontend reports its real size.
var DefaultViewport = Viewport{Width: 1024, Height: 768}

// UsableHeight is the height available to windows above the taskbar.
func (v Viewport) UsableHeight() int {
	return max(0, v.Height-TaskbarHeight)
}

// InitialBounds computes where a new window opens. base is the kind's
// default rect, offset the cascade shift. The second result reports that
// the desired size does not fit and the window should open maximized.
func InitialBounds(base Bounds, offset int, vp Viewport) (Bounds, bool) {
	w := base.W
	if w == 0 {
		w = defaultWidth
	}
	h := base.H
	if h == 0 {
		h = defaultHeight
	}
	desiredW := max(MinWidth, w)
	desiredH := max(MinHeight, h)
	usableH := vp.UsableHeight()

	maximize := desiredW > vp.Width || desiredH > usableH
	w = min(desiredW, vp.Width)
	h = min(desiredH, usableH)

	return Bounds{
		X: clamp(base.X+offset, 0, max(0, vp.Width-w)),
		Y: clamp(base.Y+offset, 0, max(0, usableH-h)),
		W: w,
		H: h,
	}, maximize
}

// ClampBounds fits b inside the viewport minus the taskbar. The size is
// held to the minimums unless the viewport itself is smaller. It is
// applied when a drag or resize is committed.
func ClampBounds(b Bounds, vp Viewport) Bounds {
	usableH := vp.UsableHeight()
	w := min(max(MinWidth, b.W), vp.Width)
	h := min(max(MinHeight, b.H), usableH)
	return Bounds{
		X: clamp(b.X, 0, max(0, vp.Width-w)),
		Y: clamp(b.Y, 0, max(0, usableH-h)),
		W: w,
		H: h,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
