// Package v1 defines the InTech realtime protocol v1 contract.
//
// This package is intentionally stable and dependency-light.
// It is shared between server and clients to keep the wire protocol authoritative.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the protocol version identifier embedded into every envelope.
const Version = "v1"

// Type constants (wire-stable; names match the server-side notification methods).
const (
	// TypePing is a liveness probe (client -> server); the server answers with a Pong.
	TypePing = "Ping"
	// TypePong echoes the caller's connection id (server -> client).
	TypePong = "Pong"
	// TypeErrorHandler carries a status code and a user-facing message (server -> client).
	TypeErrorHandler = "ErrorHandler"
	// TypeForceStopConnection tells a stale connection it has been evicted (server -> client).
	TypeForceStopConnection = "ForceStopConnection"
)

// Status codes carried by ErrorHandler payloads (wire-stable).
const (
	// StatusUnknownError is the catch-all for unexpected connection failures.
	StatusUnknownError = 0
	// StatusSessionExpired means the presented session id is missing or expired.
	StatusSessionExpired = 100
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs strict structural validation for an Envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}

	switch e.Type {
	case TypePing,
		TypePong,
		TypeErrorHandler,
		TypeForceStopConnection:
		return nil
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// ---- Payloads ----

// PingPayload is sent by the client to probe the connection. It carries no fields.
type PingPayload struct{}

// PongPayload echoes the connection id assigned by the server.
type PongPayload struct {
	ConnectionID string `json:"connectionId"`
}

// ErrorHandlerPayload reports a connection-level failure to the client.
type ErrorHandlerPayload struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// ForceStopConnectionPayload names the connection being evicted.
type ForceStopConnectionPayload struct {
	ConnectionID string `json:"connectionId"`
}
