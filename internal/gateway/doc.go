// Package gateway runs the ChatBot360 admin console.
//
// # Overview
//
// The gateway is the console's composition root. It owns:
//
//   - The SQLite store holding operator sessions and chat console state
//   - The backend client for the admin API and the chat API
//   - The session manager and its expiry sweeper
//   - The HTTP server serving the webadmin routes
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	if err != nil { ... }
//	err = gw.Run(ctx) // blocks until ctx is canceled
//
// Run listens on server.http_addr, starts the sweeper, and on cancellation
// shuts the HTTP server down with a five second deadline before closing the
// store.
//
// # Session secret
//
// When session.secret is empty a random secret is generated at startup and a
// warning is logged. Every operator is signed out on restart in that case.
package gateway
