package api

import (
	"fmt"
	"net/http"

	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/router"
	"retrodesk/pkg/wm"
)

// send applies ev on the desktop loop and writes the error response on
// failure.
func (a *API) send(w http.ResponseWriter, r *http.Request, ev desktop.Event) (desktop.Reply, bool) {
	rep, err := a.desk.Send(r.Context(), ev)
	if err != nil {
		a.writeError(w, r, err)
		return rep, false
	}
	return rep, true
}

func (a *API) getDesktop(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.desk.State())
}

func (a *API) showDesktop(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.send(w, r, desktop.ShowDesktop{})
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]bool{"showingDesktop": rep.ShowingDesktop})
}

func (a *API) startMenu(w http.ResponseWriter, r *http.Request) {
	var ev desktop.StartMenu
	if r.ContentLength != 0 {
		if err := decode(r, &ev); err != nil {
			a.writeError(w, r, err)
			return
		}
	}
	if _, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, a.desk.State())
	}
}

func (a *API) hotkey(w http.ResponseWriter, r *http.Request) {
	var ev desktop.Hotkey
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	rep, ok := a.send(w, r, ev)
	if !ok {
		return
	}
	if rep.Window != nil {
		a.writeJSON(w, http.StatusCreated, rep.Window)
		return
	}
	a.writeJSON(w, http.StatusOK, a.desk.State())
}

func (a *API) resize(w http.ResponseWriter, r *http.Request) {
	var vp wm.Viewport
	if err := decode(r, &vp); err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, ok := a.send(w, r, desktop.Resize{Viewport: vp}); ok {
		a.writeJSON(w, http.StatusOK, a.desk.State())
	}
}

func (a *API) openWindow(w http.ResponseWriter, r *http.Request) {
	var ev desktop.Open
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusCreated, rep.Window)
	}
}

// windowView is a window with what it shows.
type windowView struct {
	Window  wm.Window             `json:"window"`
	Kind    string                `json:"contentKind"`
	Content desktop.WindowContent `json:"content"`
}

func (a *API) getWindow(w http.ResponseWriter, r *http.Request) {
	win, c, err := a.desk.Window(router.Param(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, windowView{Window: win, Kind: desktop.KindName(c), Content: c})
}

func (a *API) setBounds(w http.ResponseWriter, r *http.Request) {
	var b wm.Bounds
	if err := decode(r, &b); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, desktop.Bounds{ID: router.Param(r, "id"), Rect: b}); ok {
		a.writeJSON(w, http.StatusOK, rep.Window)
	}
}

func (a *API) dragStart(w http.ResponseWriter, r *http.Request) {
	var ev desktop.DragStart
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, rep.Window)
	}
}

func (a *API) dragMove(w http.ResponseWriter, r *http.Request) {
	var ev desktop.DragMove
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, rep.Window)
	}
}

func (a *API) dragEnd(w http.ResponseWriter, r *http.Request) {
	if rep, ok := a.send(w, r, desktop.DragEnd{}); ok {
		a.writeJSON(w, http.StatusOK, rep.Window)
	}
}

func (a *API) dragCancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.send(w, r, desktop.DragCancel{}); ok {
		a.writeJSON(w, http.StatusOK, a.desk.State())
	}
}

type windowAction struct {
	name  string
	event func(id string) desktop.Event
}

var windowActions = []windowAction{
	{"activate", func(id string) desktop.Event { return desktop.Activate{ID: id} }},
	{"task", func(id string) desktop.Event { return desktop.ToggleTask{ID: id} }},
	{"minimize", func(id string) desktop.Event { return desktop.Minimize{ID: id} }},
	{"maximize", func(id string) desktop.Event { return desktop.Maximize{ID: id} }},
	{"close", func(id string) desktop.Event { return desktop.Close{ID: id} }},
}

func (a *API) windowAction(mk func(id string) desktop.Event) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.send(w, r, mk(router.Param(r, "id"))); ok {
			a.writeJSON(w, http.StatusOK, a.desk.State())
		}
	})
}

type docRequest struct {
	Type string `json:"type"`
	Slug string `json:"slug"`
}

func (a *API) openDoc(w http.ResponseWriter, r *http.Request) {
	var req docRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	t, err := content.ParseType(req.Type)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, desktop.OpenDoc{Type: t, Slug: req.Slug}); ok {
		a.writeJSON(w, http.StatusCreated, rep.Window)
	}
}

func requireID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing window id", ErrBadRequest)
	}
	return nil
}

func (a *API) exec(w http.ResponseWriter, r *http.Request) {
	var ev desktop.Exec
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := requireID(ev.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, rep.Exec)
	}
}

// inputReply is the new input line after completion or history
// navigation.
type inputReply struct {
	Input string `json:"input"`
	OK    bool   `json:"ok"`
}

func (a *API) complete(w http.ResponseWriter, r *http.Request) {
	var ev desktop.Complete
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := requireID(ev.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, inputReply{Input: rep.Input, OK: rep.OK})
	}
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := requireID(id); err != nil {
		a.writeError(w, r, err)
		return
	}
	hist, err := a.desk.TerminalHistory(id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string][]string{"history": hist})
}

func (a *API) navigateHistory(w http.ResponseWriter, r *http.Request) {
	var ev desktop.History
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := requireID(ev.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	if rep, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, inputReply{Input: rep.Input, OK: rep.OK})
	}
}

func (a *API) listContent(w http.ResponseWriter, r *http.Request) {
	t, err := content.ParseType(router.Param(r, "type"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.desk.Index().List(t))
}

func (a *API) getContent(w http.ResponseWriter, r *http.Request) {
	t, err := content.ParseType(router.Param(r, "type"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	doc, err := a.desk.Index().Lookup(t, router.Param(r, "slug"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, doc)
}

func (a *API) explorer(w http.ResponseWriter, r *http.Request) {
	t, err := content.ParseType(router.Param(r, "type"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.desk.Explorer(t, r.URL.Query().Get("q")))
}

func (a *API) setView(w http.ResponseWriter, r *http.Request) {
	var ev desktop.SetView
	if err := decode(r, &ev); err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, ok := a.send(w, r, ev); ok {
		a.writeJSON(w, http.StatusOK, map[string]desktop.ExplorerView{"view": a.desk.State().View})
	}
}

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.desk.State().Settings)
}

func (a *API) setSettings(w http.ResponseWriter, r *http.Request) {
	// Start from the current settings so partial bodies keep the rest.
	s := a.desk.State().Settings
	if err := decode(r, &s); err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, ok := a.send(w, r, desktop.SetSettings{Settings: s}); ok {
		a.writeJSON(w, http.StatusOK, s)
	}
}
