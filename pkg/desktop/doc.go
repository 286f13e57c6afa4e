// Package desktop holds the application state of a retrodesk desktop: the
// window manager, one shell session per terminal window, the content
// index, explorer and desktop settings, the start menu and the clock.
//
// Frontends never mutate that state directly. They apply Events, either
// synchronously with Dispatch or through the loop started by Run, and
// redraw from State and ContentFor. Every change that should survive a
// reload is written through the preference store under the Key*
// constants.
package desktop
