// Package client provides a typed Go client for the Inkwell API with a
// file-persisted session cache.
//
// The session holds at most one bearer token and survives process
// restarts. It is injected into the client explicitly; there is no
// ambient global state. IsAuthenticated is a pure presence check and
// never talks to the server, so a revoked token is only discovered when
// a request comes back 401.
package client
