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

// Package client talks to a running clock over its websocket API. The CLI
// uses it for -message, -stop and -status.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api/ws"

// APIError is an error reply from the clock. Code is the HTTP status the
// REST API would have returned.
type APIError struct {
	Message string
	Code    int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

type Client struct {
	addr    string
	timeout time.Duration
}

// New returns a client for the clock listening on addr (host:port).
func New(addr string) *Client {
	return &Client{addr: addr, timeout: config.APIRequestTimeout}
}

// NewLocal returns a client for the instance configured in cfg on this
// machine.
func NewLocal(cfg *config.Instance) *Client {
	return New("localhost:" + strconv.Itoa(cfg.APIPort()))
}

func (c *Client) url() string {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: APIPath}
	return u.String()
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	return conn, nil
}

func closeConn(conn *websocket.Conn) {
	if err := conn.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing websocket")
	}
}

// readMatching reads until match accepts a message, the timeout passes or
// ctx is cancelled. A zero timeout waits forever.
func readMatching(
	ctx context.Context,
	conn *websocket.Conn,
	timeout time.Duration,
	match func([]byte) bool,
) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() { closeConn(conn) })
	defer stop()

	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrRequestCancelled
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, ErrRequestTimeout
			}
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		if match(msg) {
			return msg, nil
		}
	}
}

// Call runs one method and returns its raw result.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := uuid.New()
	req := models.RequestObject{ID: &id, Method: method}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		req.Params = b
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp models.ResponseObject
	_, err = readMatching(ctx, conn, c.timeout, func(msg []byte) bool {
		var m models.ResponseObject
		if json.Unmarshal(msg, &m) != nil || m.ID != id {
			return false
		}
		resp = m
		return true
	})
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, &APIError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	return resp.Result, nil
}

// WaitNotification blocks until a notification with the given method
// arrives and returns its params.
func (c *Client) WaitNotification(ctx context.Context, timeout time.Duration, method string) (json.RawMessage, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var notif models.Notification
	_, err = readMatching(ctx, conn, timeout, func(msg []byte) bool {
		var n models.Notification
		if json.Unmarshal(msg, &n) != nil || n.Method != method {
			return false
		}
		notif = n
		return true
	})
	if err != nil {
		return nil, err
	}
	return notif.Params, nil
}

func callInto[T any](ctx context.Context, c *Client, method string, params any) (T, error) {
	var out T
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return out, nil
}

func (c *Client) SubmitMessage(ctx context.Context, text string) (models.MessageResponse, error) {
	return callInto[models.MessageResponse](ctx, c, models.MethodMessage, models.MessageParams{Message: &text})
}

func (c *Client) StopScroll(ctx context.Context) error {
	_, err := c.Call(ctx, models.MethodStop, nil)
	return err
}

func (c *Client) QueryStatus(ctx context.Context) (models.StatusResponse, error) {
	return callInto[models.StatusResponse](ctx, c, models.MethodStatus, nil)
}

func (c *Client) Info(ctx context.Context) (models.InfoResponse, error) {
	return callInto[models.InfoResponse](ctx, c, models.MethodInfo, nil)
}
