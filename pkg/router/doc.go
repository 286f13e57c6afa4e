// Package router provides the HTTP router used by the retrodesk server:
// pattern matching with named parameters, per-route and global
// middleware, and request ids.
//
// The router supports the following patterns:
//   - Exact match: /api/desktop
//   - Named parameters: /api/windows/:id
//   - Wildcard matching: /static/*
//
// Example usage:
//
//	r := router.New()
//	r.Use(router.RequestIDMiddleware(), router.LoggingMiddleware(logger))
//	r.GET("/api/windows/:id", windowHandler)
//	http.ListenAndServe(":8080", r)
package router
