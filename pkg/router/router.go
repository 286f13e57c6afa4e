package router

import (
	"net/http"
	"regexp"
	"strings"
	"sync"
)

// Route is one registered method and pattern.
type Route struct {
	Method  string
	Pattern string

	handler http.Handler
	re      *regexp.Regexp
}

// Router matches request paths against patterns such as
// "/api/windows/:id" or "/static/*" and dispatches by method.
type Router struct {
	mu         sync.RWMutex
	routes     map[string][]Route
	middleware []Middleware
	notFound   http.Handler
	notAllowed http.Handler
}

// New creates a Router that answers 404 and 405 with plain text.
func New() *Router {
	return &Router{
		routes:   make(map[string][]Route),
		notFound: http.NotFoundHandler(),
		notAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}),
	}
}

func (r *Router) GET(pattern string, h http.Handler, mws ...Middleware) {
	r.AddRoute(http.MethodGet, pattern, h, mws...)
}

func (r *Router) POST(pattern string, h http.Handler, mws ...Middleware) {
	r.AddRoute(http.MethodPost, pattern, h, mws...)
}

func (r *Router) PUT(pattern string, h http.Handler, mws ...Middleware) {
	r.AddRoute(http.MethodPut, pattern, h, mws...)
}

func (r *Router) DELETE(pattern string, h http.Handler, mws ...Middleware) {
	r.AddRoute(http.MethodDelete, pattern, h, mws...)
}

// AddRoute registers h for method and pattern. Route middleware runs
// inside the global chain, first listed outermost. Routes are tried in
// registration order.
func (r *Router) AddRoute(method, pattern string, h http.Handler, mws ...Middleware) {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	route := Route{Method: method, Pattern: pattern, handler: h, re: compile(pattern)}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[method] = append(r.routes[method], route)
}

var paramPattern = regexp.MustCompile(`:([A-Za-z][A-Za-z0-9_]*)`)

// compile turns ":name" segments into named groups and a trailing "/*"
// into the "wildcard" group. QuoteMeta leaves ':' and letters alone.
func compile(pattern string) *regexp.Regexp {
	expr := paramPattern.ReplaceAllString(regexp.QuoteMeta(pattern), `(?P<$1>[^/]+)`)
	if rest, ok := strings.CutSuffix(expr, `/\*`); ok {
		expr = rest + "(?P<wildcard>/.*)"
	}
	return regexp.MustCompile("^" + expr + "$")
}

func (rt Route) match(path string) Params {
	m := rt.re.FindStringSubmatch(path)
	if m == nil {
		return nil
	}
	params := make(Params)
	for i, name := range rt.re.SubexpNames() {
		if name != "" {
			params[name] = m[i]
		}
	}
	return params
}

// ServeHTTP implements http.Handler. HEAD falls back to GET routes.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	middleware := r.middleware
	h, params := r.lookup(req.Method, req.URL.Path)
	if h == nil && req.Method == http.MethodHead {
		h, params = r.lookup(http.MethodGet, req.URL.Path)
	}
	if h == nil {
		h = r.notFound
		if r.otherMethodMatches(req.Method, req.URL.Path) {
			h = r.notAllowed
		}
	}
	r.mu.RUnlock()

	// Global middleware wraps every outcome so 404s get logged too.
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	if params != nil {
		req = req.WithContext(WithParams(req.Context(), params))
	}
	h.ServeHTTP(w, req)
}

func (r *Router) lookup(method, path string) (http.Handler, Params) {
	for _, route := range r.routes[method] {
		if p := route.match(path); p != nil {
			return route.handler, p
		}
	}
	return nil, nil
}

func (r *Router) otherMethodMatches(method, path string) bool {
	for m := range r.routes {
		if m == method {
			continue
		}
		if h, _ := r.lookup(m, path); h != nil {
			return true
		}
	}
	return false
}

// Use appends global middleware.
func (r *Router) Use(mws ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mws...)
}

func (r *Router) SetNotFoundHandler(h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = h
}

func (r *Router) SetMethodNotAllowedHandler(h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notAllowed = h
}

// Routes returns every registered route.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []Route
	for _, rs := range r.routes {
		routes = append(routes, rs...)
	}
	return routes
}
