// Package api exposes a desktop over HTTP: a JSON API that turns requests
// into desktop events, a websocket feed of state changes, standalone
// pages for documents, and the browser desktop itself as static files.
//
// Domain errors map to status codes in StatusFor; every error body is
// {"error": "...", "requestId": "..."}.
package api
