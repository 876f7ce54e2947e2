// Matrix Clock
// Copyright (c) 2026 The Matrix Clock Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Matrix Clock.
//
// Matrix Clock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Matrix Clock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Matrix Clock.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matrixclock/matrixclock/pkg/api/middleware"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, ctrl *mocks.MockController) *Server {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewServer(ctx, cfg, ctrl)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.RemoteAddr = "192.168.1.30:40000"
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPostMessage(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("SubmitMessage", mock.Anything, "HELLO").Return(models.MessageResponse{
		Status:  models.StatusSuccess,
		Message: "HELLO",
		Scrolls: "3",
	}, nil)

	w := do(t, newTestServer(t, ctrl), http.MethodPost, "/api/message", `{"message":"HELLO"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success","message":"HELLO","scrolls":"3"}`, w.Body.String())
}

func TestPostMessageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "no body", body: "", want: "No message provided"},
		{name: "invalid json", body: `{"message"`, want: "Invalid JSON"},
		{name: "missing field", body: `{"msg":"HI"}`, want: "Missing message parameter"},
		{name: "empty message", body: `{"message":""}`, want: "message must not be empty"},
		{
			name: "too long",
			body: `{"message":"` + strings.Repeat("x", 300) + `"}`,
			want: "message must be at most 256 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := &mocks.MockController{}
			w := do(t, newTestServer(t, ctrl), http.MethodPost, "/api/message", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, strings.TrimSpace(w.Body.String()))
			ctrl.AssertNotCalled(t, "SubmitMessage", mock.Anything, mock.Anything)
		})
	}
}

func TestPostStop(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("StopScroll", mock.Anything).Return(nil)

	w := do(t, newTestServer(t, ctrl), http.MethodPost, "/api/stop", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Scrolling stopped", w.Body.String())
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("QueryStatus", mock.Anything).Return(models.StatusResponse{Scrolling: true, Message: "HELLO"}, nil)

	w := do(t, newTestServer(t, ctrl), http.MethodGet, "/api/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"scrolling":true,"message":"HELLO"}`, w.Body.String())
}

func TestControllerDownIs503(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("QueryStatus", mock.Anything).Return(models.StatusResponse{}, models.ErrNotRunning)

	w := do(t, newTestServer(t, ctrl), http.MethodGet, "/api/status", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, models.ErrTextNotRunning, strings.TrimSpace(w.Body.String()))
}

func TestWrongMethod(t *testing.T) {
	t.Parallel()

	w := do(t, newTestServer(t, &mocks.MockController{}), http.MethodGet, "/api/message", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRateLimited(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("QueryStatus", mock.Anything).Return(models.StatusResponse{}, nil)
	s := newTestServer(t, ctrl)

	codes := make([]int, 0, middleware.BurstSize+1)
	for range middleware.BurstSize + 1 {
		codes = append(codes, do(t, s, http.MethodGet, "/api/status", "").Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])
}

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocketCall(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("QueryStatus", mock.Anything).Return(models.StatusResponse{Scrolling: true, Message: "HI"}, nil)
	conn := dialWS(t, newTestServer(t, ctrl))

	id := uuid.New()
	require.NoError(t, conn.WriteJSON(models.RequestObject{ID: &id, Method: models.MethodStatus}))

	var resp models.ResponseObject
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, id, resp.ID)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"scrolling":true,"message":"HI"}`, string(resp.Result))
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()

	conn := dialWS(t, newTestServer(t, &mocks.MockController{}))

	id := uuid.New()
	require.NoError(t, conn.WriteJSON(models.RequestObject{
		ID:     &id,
		Method: models.MethodMessage,
		Params: json.RawMessage(`{"text":"x"}`),
	}))

	var resp models.ResponseObject
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusBadRequest, resp.Error.Code)
	assert.Equal(t, models.ErrTextMissingMessage, resp.Error.Message)

	require.NoError(t, conn.WriteJSON(models.RequestObject{ID: &id, Method: "reboot"}))
	resp = models.ResponseObject{}
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusNotFound, resp.Error.Code)
}

func TestWebSocketPing(t *testing.T) {
	t.Parallel()

	conn := dialWS(t, newTestServer(t, &mocks.MockController{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))
}

func TestBroadcastNotifications(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &mocks.MockController{})
	conn := dialWS(t, s)

	// Round trip a ping so the session is registered before broadcasting.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ns := make(chan models.Notification, 1)
	go s.BroadcastNotifications(ctx, ns)

	ns <- models.Notification{Method: models.NotificationModeChanged, Params: json.RawMessage(`{"from":"clock","to":"scrolling"}`)}

	var n models.Notification
	require.NoError(t, conn.ReadJSON(&n))
	assert.Equal(t, models.NotificationModeChanged, n.Method)
	assert.JSONEq(t, `{"from":"clock","to":"scrolling"}`, string(n.Params))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ctrl := &mocks.MockController{}
	ctrl.On("QueryStatus", mock.Anything).Return(models.StatusResponse{}, nil)
	s := newTestServer(t, ctrl)

	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ServeListener(ctx, listener, make(chan models.Notification))
	}()

	url := "http://" + listener.Addr().String() + "/api/status"
	require.Eventually(t, func() bool {
		req, reqErr := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
		if reqErr != nil {
			return false
		}
		resp, getErr := http.DefaultClient.Do(req)
		if getErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
