// Package tui is a terminal frontend for the retrodesk desktop, built on
// bubbletea.
//
// The left column holds the desktop icons, or the start menu when it is
// open. The active window fills the rest of the screen above a taskbar
// with one button per window and the clock. Function keys drive the
// window manager:
//
//	F1  start menu      F5  show desktop
//	F2  next window     F6  minimize or restore
//	F3  maximize        F7  move
//	F4  close           F8  resize
//	`   new terminal    esc back to the icons
//
// While moving or resizing, the arrow keys move a virtual pointer one
// cell at a time, enter places the window and esc puts it back.
//
// Explorer windows search with "/" and switch between icons and list
// with "v". Documents are rendered from markdown with glamour.
package tui
