package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portal/internal/logger"
	"portal/internal/middleware"
	"portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("ws-secret")

func signed(t *testing.T, role string) string {
	t.Helper()
	tok, err := middleware.SignToken(middleware.Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}, secret)
	require.NoError(t, err)
	return tok
}

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeWs_RejectsBadTokens(t *testing.T) {
	_, srv := newServer(t)

	_, resp, err := gorilla.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = gorilla.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = gorilla.DefaultDialer.Dial(wsURL(srv, signed(t, "employee")), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_PublishReachesApprovers(t *testing.T) {
	hub, srv := newServer(t)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv, signed(t, "founder")), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(model.Event{Event: model.EventRequestUpdated, RequestID: "r1", Status: model.StatusApproved, Target: model.TargetAdmin})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got model.Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "r1", got.RequestID)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub() // not running: nothing drains the queue
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(model.Event{Event: model.EventRequestSubmitted, RequestID: "r"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
