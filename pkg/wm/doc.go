/*
Package wm provides window management for the retrodesk desktop.

This package implements the backend window management capabilities, including:
  - Window creation with cascaded, viewport-clamped initial bounds
  - Focus and z-order tracking (z strictly increases on every focus)
  - Minimize, maximize and taskbar toggling
  - "Show desktop" which hides every window and later restores exactly
    the set that was visible
  - Pointer driven drag and resize sessions committed on release
  - Snapshots for persisting and restoring the window list

The manager holds no view state; frontends render from Windows or Stack.

Example usage:

	manager := wm.NewManager(wm.Config{Viewport: wm.Viewport{Width: 1280, Height: 800}})
	win, err := manager.Create(wm.KindTerminal)
	if err != nil {
		// handle error
	}
	err = manager.ToggleMaximize(win.ID)
	if err != nil {
		// handle error
	}
*/
package wm
