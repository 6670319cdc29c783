// Package main provides a CI-friendly smoke test for the InTech realtime server.
//
// It validates:
//   - session creation over HTTP (POST /Session/Create)
//   - websocket handshake with the session token
//   - Ping -> Pong with the assigned connection id
//   - single-connection presence: a reconnect force-stops the old connection
//   - rejection of an unknown session token (ErrorHandler, statusCode 100)
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	v1 "github.com/VaheKhachatryan/InTechTestAppSln/contracts/realtime/v1"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	name string
	conn *websocket.Conn

	inbox chan v1.Envelope
	errCh chan error
}

func main() {
	var (
		httpURL = flag.String("http", "http://127.0.0.1:8080", "Server base URL for session creation")
		wsURL   = flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL")
		origin  = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		userID  = flag.String("user-id", "smoke-user", "UserId for the session")
		name    = flag.String("user-name", "smoke", "UserName for the session")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}

	root := context.Background()

	token := mustCreateSession(root, *httpURL, *userID, *name, *timeout)
	if *verbose {
		fmt.Printf("session created: %s\n", token)
	}

	a := mustConnect(root, "A", *wsURL, token, *origin, *timeout)
	defer closeWS(a.conn)

	connA := mustPingPong(root, a, *timeout)
	if *verbose {
		fmt.Printf("connected: A=%s\n", connA)
	}

	// A second connection for the same identity supersedes the first.
	b := mustConnect(root, "B", *wsURL, token, *origin, *timeout)
	defer closeWS(b.conn)

	connB := mustPingPong(root, b, *timeout)
	if connB == connA {
		fatalf("expected distinct connection ids, both=%s", connA)
	}

	mustBeSuperseded(root, a, *timeout)

	// The survivor keeps serving.
	if got := mustPingPong(root, b, *timeout); got != connB {
		fatalf("connection id changed mid-session: got=%s want=%s", got, connB)
	}

	mustRejectUnknownToken(root, *wsURL, *origin, *timeout)

	fmt.Printf("OK: A=%s B=%s session=%s\n", connA, connB, token)
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	if strings.TrimSpace(u.Path) == "" {
		return errors.New("missing path")
	}
	return nil
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func mustCreateSession(parent context.Context, baseURL, userID, userName string, stepTimeout time.Duration) string {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{
		"userId":   userID,
		"userName": userName,
	})
	if err != nil {
		fatalf("marshal session request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/Session/Create", bytes.NewReader(body))
	if err != nil {
		fatalf("build session request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("create session: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var fail struct {
			HasError bool   `json:"hasError"`
			Message  string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&fail)
		fatalf("create session: status=%d message=%q", resp.StatusCode, fail.Message)
	}

	var out struct {
		Session string `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("decode session response: %v", err)
	}
	if strings.TrimSpace(out.Session) == "" {
		fatalf("empty session token in response")
	}
	return out.Session
}

func mustConnect(parent context.Context, name, wsURL, token, origin string, stepTimeout time.Duration) *smokeClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	conn, resp, err := dialWS(ctx, wsURL, token, origin)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect %s: %v", name, err)
	}

	conn.SetReadLimit(maxReadBytes)

	c := &smokeClient{
		name:  name,
		conn:  conn,
		inbox: make(chan v1.Envelope, 512),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()
	return c
}

func dialWS(ctx context.Context, wsURL, token, origin string) (*websocket.Conn, *http.Response, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, nil, err
	}
	q := u.Query()
	q.Set("sessionId", token)
	u.RawQuery = q.Encode()

	h := http.Header{}
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	return websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPHeader: h})
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			mt, data, err := c.conn.Read(context.Background())
			if err != nil {
				select {
				case c.errCh <- err:
				default:
				}
				return
			}

			if mt != websocket.MessageText && mt != websocket.MessageBinary {
				select {
				case c.errCh <- fmt.Errorf("unsupported message type: %v", mt):
				default:
				}
				return
			}

			var env v1.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				select {
				case c.errCh <- fmt.Errorf("bad json: %w", err):
				default:
				}
				return
			}
			if err := env.Validate(); err != nil {
				select {
				case c.errCh <- fmt.Errorf("bad envelope: %w", err):
				default:
				}
				return
			}

			select {
			case c.inbox <- env:
			default:
				select {
				case c.errCh <- errors.New("inbox overflow: consumer too slow"):
				default:
				}
				return
			}
		}
	}()
}

func mustPingPong(parent context.Context, c *smokeClient, stepTimeout time.Duration) string {
	ping := v1.Envelope{
		V:       v1.Version,
		Type:    v1.TypePing,
		ID:      fmt.Sprintf("%s-ping-%d", c.name, time.Now().UnixNano()),
		TS:      time.Now().UTC(),
		Payload: mustJSON(v1.PingPayload{}),
	}
	mustWriteWithTimeout(parent, c.conn, ping, stepTimeout)

	pong := c.mustReadUntilType(parent, v1.TypePong, stepTimeout)

	var p v1.PongPayload
	if err := json.Unmarshal(pong.Payload, &p); err != nil {
		fatalf("unmarshal pong payload (%s): %v", c.name, err)
	}
	if strings.TrimSpace(p.ConnectionID) == "" {
		fatalf("pong missing connectionId (%s)", c.name)
	}
	return p.ConnectionID
}

// mustBeSuperseded waits for the connection to die after a reconnect elsewhere.
// The ForceStopConnection notice is best-effort; the close is the guarantee.
func mustBeSuperseded(parent context.Context, c *smokeClient, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	sawForceStop := false
	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for supersede (%s): %v", c.name, ctx.Err())
		case <-c.errCh:
			// Connection closed. Good either way.
			if !sawForceStop {
				fmt.Fprintf(os.Stderr, "note: %s closed without a ForceStopConnection notice\n", c.name)
			}
			return
		case env, ok := <-c.inbox:
			if !ok {
				return
			}
			if env.Type == v1.TypeForceStopConnection {
				sawForceStop = true
			}
		}
	}
}

func mustRejectUnknownToken(parent context.Context, wsURL, origin string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	conn, resp, err := dialWS(ctx, wsURL, "no-such-token", origin)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect with bogus token: %v", err)
	}
	defer closeWS(conn)

	c := &smokeClient{
		name:  "R",
		conn:  conn,
		inbox: make(chan v1.Envelope, 16),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()

	env := c.mustReadUntilType(parent, v1.TypeErrorHandler, stepTimeout)

	var p v1.ErrorHandlerPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		fatalf("unmarshal error payload: %v", err)
	}
	if p.StatusCode != v1.StatusSessionExpired {
		fatalf("reject statusCode mismatch: got=%d want=%d", p.StatusCode, v1.StatusSessionExpired)
	}
}

func (c *smokeClient) mustReadUntilType(parent context.Context, wantType string, stepTimeout time.Duration) v1.Envelope {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %q (%s): %v", wantType, c.name, ctx.Err())
		case err := <-c.errCh:
			if err == nil {
				fatalf("connection closed while waiting for %q (%s)", wantType, c.name)
			}
			fatalf("connection error while waiting for %q (%s): %v", wantType, c.name, err)
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("connection closed while waiting for %q (%s)", wantType, c.name)
			}
			if env.Type == wantType {
				return env
			}
			fatalf("unexpected envelope type (%s): got=%q want=%q", c.name, env.Type, wantType)
		}
	}
}

func mustWriteWithTimeout(parent context.Context, conn *websocket.Conn, env v1.Envelope, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		fatalf("marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write failed: %v", err)
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
