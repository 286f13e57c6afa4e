package api

import (
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"retrodesk/pkg/desktop"
	"retrodesk/pkg/router"
	"retrodesk/pkg/server"
)

// Config holds configuration for the API.
type Config struct {
	Desktop *desktop.Desktop
	Logger  *zap.Logger
	// Static holds the browser desktop. Unknown extensionless paths are
	// answered with its index.html.
	Static fs.FS
	// AllowedOrigins enables CORS and websocket connections from other
	// origins. "*" allows any.
	AllowedOrigins []string
	// Checks are run by /ready.
	Checks []server.Check
	// MaxClients bounds websocket connections. Zero means DefaultMaxClients.
	MaxClients int
}

// API serves the desktop over HTTP and websockets. Mutations go through
// Desktop.Send, so a Desktop.Run loop must be running.
type API struct {
	desk    *desktop.Desktop
	logger  *zap.Logger
	origins []string
	checks  []server.Check
	static  http.Handler
	pages   *template.Template
	hub     *Hub
	unsub   func()
}

// New creates the API and subscribes its websocket hub to desktop
// changes. Call Close to unsubscribe.
func New(cfg Config) *API {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	a := &API{
		desk:    cfg.Desktop,
		logger:  cfg.Logger,
		origins: cfg.AllowedOrigins,
		checks:  cfg.Checks,
		pages:   pageTemplate,
	}
	if cfg.Static != nil {
		h := server.NewStaticFileHandler(cfg.Static)
		h.SetFallback("index.html")
		a.static = h
	}
	a.hub = NewHub(HubConfig{
		Snapshot:       cfg.Desktop.State,
		Logger:         cfg.Logger.Named("ws"),
		AllowedOrigins: cfg.AllowedOrigins,
		MaxClients:     cfg.MaxClients,
	})
	a.unsub = cfg.Desktop.Subscribe(a.hub.Broadcast)
	return a
}

// Hub returns the websocket hub.
func (a *API) Hub() *Hub {
	return a.hub
}

// Close unsubscribes from the desktop and disconnects websocket clients.
func (a *API) Close() {
	a.unsub()
	a.hub.Close()
}

// Handler returns the router with every route and the global middleware.
func (a *API) Handler() http.Handler {
	r := router.New()
	r.Use(
		router.RequestIDMiddleware(),
		router.LoggingMiddleware(a.logger),
		router.RecoveryMiddleware(a.logger),
	)
	if len(a.origins) > 0 {
		r.Use(router.CORSMiddleware(a.origins))
	}
	a.Routes(r)

	if a.static != nil {
		r.SetNotFoundHandler(a.static)
	} else {
		r.SetNotFoundHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a.writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", RequestID: router.RequestID(req.Context())})
		}))
	}
	return r
}

// Routes registers every endpoint on r.
func (a *API) Routes(r *router.Router) {
	r.GET("/health", server.HealthHandler())
	r.GET("/ready", server.ReadyHandler(a.checks...))

	r.GET("/api/desktop", http.HandlerFunc(a.getDesktop))
	r.POST("/api/desktop/show", http.HandlerFunc(a.showDesktop))
	r.POST("/api/desktop/start", http.HandlerFunc(a.startMenu))
	r.POST("/api/desktop/hotkey", http.HandlerFunc(a.hotkey))
	r.PUT("/api/desktop/viewport", http.HandlerFunc(a.resize))

	r.POST("/api/windows", http.HandlerFunc(a.openWindow))
	r.GET("/api/windows/:id", http.HandlerFunc(a.getWindow))
	r.PUT("/api/windows/:id/bounds", http.HandlerFunc(a.setBounds))
	for _, act := range windowActions {
		r.POST("/api/windows/:id/"+act.name, a.windowAction(act.event))
	}
	r.POST("/api/drag", http.HandlerFunc(a.dragStart))
	r.POST("/api/drag/move", http.HandlerFunc(a.dragMove))
	r.POST("/api/drag/end", http.HandlerFunc(a.dragEnd))
	r.POST("/api/drag/cancel", http.HandlerFunc(a.dragCancel))
	r.POST("/api/docs", http.HandlerFunc(a.openDoc))

	r.POST("/api/terminal/exec", http.HandlerFunc(a.exec))
	r.POST("/api/terminal/complete", http.HandlerFunc(a.complete))
	r.GET("/api/terminal/history", http.HandlerFunc(a.history))
	r.POST("/api/terminal/history", http.HandlerFunc(a.navigateHistory))

	r.GET("/api/content/:type", http.HandlerFunc(a.listContent))
	r.GET("/api/content/:type/:slug", http.HandlerFunc(a.getContent))
	r.GET("/api/explorer/:type", http.HandlerFunc(a.explorer))
	r.PUT("/api/explorer/view", http.HandlerFunc(a.setView))

	r.GET("/api/settings", http.HandlerFunc(a.getSettings))
	r.PUT("/api/settings", http.HandlerFunc(a.setSettings))

	r.GET("/ws", a.hub)

	r.GET("/projects/:slug", a.docPage(projectPages))
	r.GET("/blog/:slug", a.docPage(postPages))
	r.GET("/about", http.HandlerFunc(a.aboutPage))
}
