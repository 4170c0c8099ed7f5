package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// startHub runs a hub behind a websocket test server.
func startHub(t *testing.T, config WebSocketSecurityConfig) (*Hub, string, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(SecureWebSocketHandler(hub, config, NewWebSocketRateLimiter()))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readProgress(t *testing.T, conn *websocket.Conn) ProgressMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	// Queued messages may arrive newline-batched.
	first, _, _ := strings.Cut(string(data), "\n")
	var msg ProgressMessage
	if err := json.Unmarshal([]byte(first), &msg); err != nil {
		t.Fatalf("invalid message %q: %v", data, err)
	}
	return msg
}

func TestHubBroadcastProgress(t *testing.T) {
	hub, url, _ := startHub(t, DefaultWebSocketSecurityConfig(nil))
	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	hub.BroadcastProgress("req-1", "narrative", "Composed narrative", 80)
	msg := readProgress(t, conn)
	if msg.Type != "progress" || msg.Operation != "generate" {
		t.Errorf("Type/Operation = %q/%q", msg.Type, msg.Operation)
	}
	if msg.RequestID != "req-1" || msg.Stage != "narrative" || msg.Progress != 80 {
		t.Errorf("unexpected message: %+v", msg)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC 3339", msg.Timestamp)
	}
}

func TestHubBroadcastHelpers(t *testing.T) {
	hub, url, _ := startHub(t, DefaultWebSocketSecurityConfig(nil))
	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	hub.BroadcastComplete("req-2", "Lesson ready", map[string]any{"deck_id": "abc"})
	msg := readProgress(t, conn)
	if msg.Type != "complete" || msg.Progress != 100 || msg.Data["deck_id"] != "abc" {
		t.Errorf("complete message = %+v", msg)
	}

	hub.BroadcastError("req-3", "boom")
	msg = readProgress(t, conn)
	if msg.Type != "error" || msg.Message != "boom" || msg.RequestID != "req-3" {
		t.Errorf("error message = %+v", msg)
	}
}

func TestHubMultipleClients(t *testing.T) {
	hub, url, _ := startHub(t, DefaultWebSocketSecurityConfig(nil))
	a := dial(t, url)
	b := dial(t, url)
	waitFor(t, "two clients", func() bool { return hub.ClientCount() == 2 })

	hub.BroadcastProgress("req", "slides", "Structured slides", 100)
	for _, conn := range []*websocket.Conn{a, b} {
		if msg := readProgress(t, conn); msg.Stage != "slides" {
			t.Errorf("Stage = %q, want slides", msg.Stage)
		}
	}

	a.Close()
	waitFor(t, "disconnect", func() bool { return hub.ClientCount() == 1 })
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, url, cancel := startHub(t, DefaultWebSocketSecurityConfig(nil))
	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close after shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}
}

func TestWebSocketOrigin(t *testing.T) {
	_, url, _ := startHub(t, DefaultWebSocketSecurityConfig([]string{"https://lessons.example.org"}))

	tests := []struct {
		origin string
		ok     bool
	}{
		{"https://lessons.example.org", true},
		{"https://evil.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.ok {
				if err != nil {
					t.Fatalf("Dial() error: %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("expected origin to be rejected")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("expected 403, got %v", resp)
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"empty list allows all", "https://any.org", nil, true},
		{"exact", "https://a.org", []string{"https://a.org"}, true},
		{"wildcard", "https://a.org", []string{"*"}, true},
		{"subdomain", "https://app.a.org", []string{"*.a.org"}, true},
		{"other domain", "https://b.org", []string{"*.a.org"}, false},
		{"missing origin", "", []string{"https://a.org"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOriginAllowed(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("isOriginAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestWebSocketInboundLimits(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		code     int
	}{
		{"rate", []string{"a", "b", "c", "d", "e", "f"}, websocket.ClosePolicyViolation},
		{"size", []string{strings.Repeat("x", 64)}, websocket.CloseMessageTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, url, _ := startHub(t, WebSocketSecurityConfig{MaxMessageRate: 1, MaxMessageSize: 32})
			conn := dial(t, url)

			for _, m := range tt.messages {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
					break
				}
			}

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, err := conn.ReadMessage()
			if !websocket.IsCloseError(err, tt.code) {
				t.Errorf("ReadMessage() error = %v, want close code %d", err, tt.code)
			}
		})
	}
}

func TestWebSocketRateLimiterUnknownClient(t *testing.T) {
	rl := NewWebSocketRateLimiter()
	c := &Client{}
	if rl.Allow(c) {
		t.Error("unregistered client allowed")
	}
	rl.Register(c, 1)
	if !rl.Allow(c) || !rl.Allow(c) {
		t.Error("registered client denied within burst")
	}
	if rl.Allow(c) {
		t.Error("third message allowed with burst 2")
	}
	rl.Unregister(c)
	if rl.Allow(c) {
		t.Error("unregistered client allowed")
	}
}
