// Package api provides the HTTP REST API for Inkwell.
//
// It exposes registration, login, and article CRUD endpoints to the
// browser frontend. Every route except health, register, and login sits
// behind a bearer-token gate that resolves the presented token to a user
// before any handler runs.
//
// The server follows the standard lifecycle pattern:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
