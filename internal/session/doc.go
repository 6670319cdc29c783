// Package session implements short-lived user sessions backed by the
// distributed cache. A session bridges the handoff between the HTTP-issued
// token and realtime connection establishment; once a connection is live,
// presence is the source of truth and the session only matters for reconnect
// tolerance.
package session
