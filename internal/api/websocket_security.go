package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
)

// WebSocketSecurityConfig holds WebSocket-specific security configuration.
type WebSocketSecurityConfig struct {
	// AllowedOrigins is a list of allowed origin patterns. Empty allows any
	// origin, "*.example.com" allows subdomains.
	AllowedOrigins []string

	// MaxMessageRate is the maximum number of messages per second per client.
	MaxMessageRate int

	// MaxMessageSize is the maximum message size in bytes.
	MaxMessageSize int64
}

// DefaultWebSocketSecurityConfig returns the limits used by the server.
func DefaultWebSocketSecurityConfig(allowedOrigins []string) WebSocketSecurityConfig {
	return WebSocketSecurityConfig{
		AllowedOrigins: allowedOrigins,
		MaxMessageRate: 10,
		MaxMessageSize: 4096,
	}
}

// WebSocketRateLimiter tracks inbound message rates per client.
type WebSocketRateLimiter struct {
	clients map[*Client]*tokenBucket
	mu      sync.RWMutex
}

// NewWebSocketRateLimiter creates a new WebSocket rate limiter.
func NewWebSocketRateLimiter() *WebSocketRateLimiter {
	return &WebSocketRateLimiter{
		clients: make(map[*Client]*tokenBucket),
	}
}

// Register registers a client for rate limiting. Bursts of twice the
// per-second rate are allowed.
func (rl *WebSocketRateLimiter) Register(client *Client, messagesPerSecond int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients[client] = newTokenBucket(float64(messagesPerSecond)*2, float64(messagesPerSecond), time.Now)
}

// Unregister removes a client from rate limiting.
func (rl *WebSocketRateLimiter) Unregister(client *Client) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.clients, client)
}

// Allow checks if a message from the client should be allowed. Unknown
// clients are denied.
func (rl *WebSocketRateLimiter) Allow(client *Client) bool {
	rl.mu.RLock()
	bucket, exists := rl.clients[client]
	rl.mu.RUnlock()

	if !exists {
		return false
	}
	return bucket.allow()
}

// isOriginAllowed checks if the origin is in the allowed list.
// Supports exact matches, "*" and "*.domain" patterns.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if len(allowedOrigins) == 0 {
		return true
	}
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, allowed[1:]) {
			return true
		}
	}
	return false
}

// CheckOriginWithConfig creates a CheckOrigin function based on security config.
func CheckOriginWithConfig(config WebSocketSecurityConfig) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowed := isOriginAllowed(origin, config.AllowedOrigins)
		if !allowed {
			logging.SecurityEvent("websocket_origin_rejected", "api",
				"origin", origin,
				"client_ip", getClientIP(r))
		}
		return allowed
	}
}

// SecureWebSocketHandler upgrades connections with origin checking, a read
// size limit and inbound message rate limiting, then registers the client.
func SecureWebSocketHandler(hub *Hub, config WebSocketSecurityConfig, rateLimiter *WebSocketRateLimiter) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     CheckOriginWithConfig(config),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
			return
		}

		conn.SetReadLimit(config.MaxMessageSize)

		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, sendBuffer),
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}
		rateLimiter.Register(client, config.MaxMessageRate)

		go client.writePump()
		go client.readPump(rateLimiter)
	}
}

// readPump drains inbound messages, keeping the connection alive and
// enforcing the message rate. The hub is broadcast-only, so message content
// is ignored.
func (c *Client) readPump(rateLimiter *WebSocketRateLimiter) {
	defer func() {
		rateLimiter.Unregister(c)
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn("websocket unexpected close", "error", err)
			}
			return
		}

		if !rateLimiter.Allow(c) {
			logging.SecurityEvent("websocket_rate_limited", "api")
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Rate limit exceeded"),
				time.Now().Add(writeWait))
			return
		}
	}
}
