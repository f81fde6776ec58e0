package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unisphere/config"
	"unisphere/pkg/jwt"
	"unisphere/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, presence *redis.Presence) (*httptest.Server, *Manager, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "unisphere", ExpireTime: time.Hour})
	manager := NewManager(presence)
	h := NewHandler(manager, jwtSvc, config.WebSocketConfig{PingInterval: time.Second, ReadTimeout: 5 * time.Second}, nil)

	r := gin.New()
	r.GET("/ws", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, manager, jwtSvc
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeRejectsMissingOrBadToken(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	for _, token := range []string{"", "garbage"} {
		_, resp, err := gorillaws.DefaultDialer.Dial(wsURL(srv, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestServePushesToConnectedUser(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	presence := redis.NewPresence(rdb)

	srv, manager, jwtSvc := newTestServer(t, presence)
	token, err := jwtSvc.GenerateToken(7, "alice")
	require.NoError(t, err)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return manager.IsOnline(7) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, manager.SendToUser(8, []byte(`{"type":"noop"}`)), "user 8 is offline")
	require.True(t, manager.SendToUser(7, []byte(`{"type":"notification"}`)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notification"}`, string(msg))

	online, err := presence.IsOnline(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !manager.IsOnline(7) }, 2*time.Second, 10*time.Millisecond)
}

func TestManagerReplacesExistingClient(t *testing.T) {
	m := NewManager(nil)
	first := &Client{UserID: 1, Send: make(chan []byte, 1)}
	second := &Client{UserID: 1, Send: make(chan []byte, 1)}

	m.AddClient(first)
	m.AddClient(second)
	assert.Equal(t, 1, m.Count())

	_, open := <-first.Send
	assert.False(t, open, "replaced client's channel is closed")

	// 旧连接退出时不影响新连接
	m.RemoveClient(first)
	assert.True(t, m.IsOnline(1))

	m.RemoveClient(second)
	assert.False(t, m.IsOnline(1))
}
