// Package server exposes a catalog of choice groups over HTTP.
//
// Reads are public. Writes (setting a value, toggling members, driving a
// select and submitting) require a bearer token when server.jwtSecret is
// set. Every change is fanned out to the configured dispatchers, and
// GET /groups/{name}/ws streams it to WebSocket clients.
package server
