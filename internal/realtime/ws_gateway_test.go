package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/redis/go-redis/v9"

	v1 "github.com/VaheKhachatryan/InTechTestAppSln/contracts/realtime/v1"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/cache"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

func newGatewayServer(t *testing.T) (*httptest.Server, *session.Service) {
	t.Helper()
	t.Setenv("INTECH_WS_ORIGIN_REQUIRED", "false")

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sessions := session.NewService(nil, cache.NewManager(rdb, "test", 0), session.DefaultConfig())
	hub := NewHub(nil)
	presence := NewCoordinator(nil, sessions, NewRegistry(), hub, nil)
	gw := NewWSGateway(nil, hub, presence, nil)

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		_ = rdb.Close()
		mr.Close()
	})
	return srv, sessions
}

func dialWS(t *testing.T, ctx context.Context, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?sessionId=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func sendPing(t *testing.T, ctx context.Context, conn *websocket.Conn) {
	t.Helper()
	if err := writeEnvelope(ctx, conn, v1.Envelope{V: v1.Version, Type: v1.TypePing}, 5*time.Second); err != nil {
		t.Fatalf("write ping: %v", err)
	}
}

func TestGatewayPingPong(t *testing.T) {
	srv, sessions := newGatewayServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := dialWS(t, ctx, srv, token)
	sendPing(t, ctx, conn)

	env, err := readEnvelope(ctx, conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != v1.TypePong || env.V != v1.Version {
		t.Fatalf("envelope = %+v", env)
	}
	var pong v1.PongPayload
	if err := json.Unmarshal(env.Payload, &pong); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if pong.ConnectionID == "" {
		t.Fatalf("empty connection id in pong")
	}
}

func TestGatewayRejectsExpiredSession(t *testing.T) {
	srv, _ := newGatewayServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, srv, "no-such-token")

	env, err := readEnvelope(ctx, conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != v1.TypeErrorHandler {
		t.Fatalf("type = %q", env.Type)
	}
	var p v1.ErrorHandlerPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.StatusCode != v1.StatusSessionExpired {
		t.Fatalf("statusCode = %d", p.StatusCode)
	}

	// The server closes a rejected connection.
	if _, err := readEnvelope(ctx, conn); err == nil {
		t.Fatalf("expected connection closed after rejection")
	}
}

func TestGatewaySupersedesPreviousConnection(t *testing.T) {
	srv, sessions := newGatewayServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := sessions.Create(ctx, session.Session{UserID: "7", UserName: "ani"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	first := dialWS(t, ctx, srv, token)
	sendPing(t, ctx, first)
	if env, err := readEnvelope(ctx, first); err != nil || env.Type != v1.TypePong {
		t.Fatalf("first handshake: env=%+v err=%v", env, err)
	}

	second := dialWS(t, ctx, srv, token)
	sendPing(t, ctx, second)
	if env, err := readEnvelope(ctx, second); err != nil || env.Type != v1.TypePong {
		t.Fatalf("second handshake: env=%+v err=%v", env, err)
	}

	// The first connection gets torn down. The eviction notice is best-effort;
	// what is guaranteed is that the connection dies.
	for {
		env, err := readEnvelope(ctx, first)
		if err != nil {
			break
		}
		if env.Type == v1.TypeForceStopConnection {
			var p v1.ForceStopConnectionPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				t.Fatalf("force stop payload: %v", err)
			}
			if p.ConnectionID == "" {
				t.Fatalf("empty connection id in force stop")
			}
		}
	}

	// The surviving connection keeps serving.
	sendPing(t, ctx, second)
	if env, err := readEnvelope(ctx, second); err != nil || env.Type != v1.TypePong {
		t.Fatalf("second connection after eviction: env=%+v err=%v", env, err)
	}
}

func TestGatewayRejectsDisallowedOrigin(t *testing.T) {
	t.Setenv("INTECH_WS_ORIGIN_REQUIRED", "true")
	t.Setenv("INTECH_WS_ALLOWED_ORIGINS", "http://localhost")

	g := NewWSGateway(nil, nil, nil, nil)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	g.HandleWS(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}
