// Package server provides the HTTP server behind retrodesk: graceful
// shutdown driven by a context, optional TLS, health and readiness
// handlers, and a static file handler that falls back to the app shell
// for client side routes.
//
// Example usage:
//
//	srv, err := server.New(server.Config{Addr: ":8080", Handler: mux, Logger: logger})
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
package server
