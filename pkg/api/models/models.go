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

package models

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

const (
	NotificationModeChanged     = "display.mode"
	NotificationMessageStarted  = "message.started"
	NotificationMessageFinished = "message.finished"
	NotificationMessageStopped  = "message.stopped"
	NotificationConnectivity    = "network.connectivity"
)

const (
	StatusSuccess = "success"

	ErrTextInvalidJSON     = "Invalid JSON"
	ErrTextMissingMessage  = "Missing message parameter"
	ErrTextNoMessage       = "No message provided"
	TextScrollingStopped   = "Scrolling stopped"
	ErrTextNotRunning      = "Display controller not running"
	ErrTextRequestTimedOut = "Request timed out"
)

var (
	// ErrNotRunning is returned by controller calls once its loop has
	// exited.
	ErrNotRunning = errors.New("display controller is not running")
	// ErrInvalidMessage wraps every reason a message is rejected.
	ErrInvalidMessage = errors.New("invalid message")
)

// Notification is an event pushed to websocket clients and publishers.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Methods accepted over the websocket. They mirror the REST routes.
const (
	MethodMessage = "message"
	MethodStop    = "stop"
	MethodStatus  = "status"
	MethodInfo    = "info"
)

// RequestObject is a websocket call. Calls without an ID get no reply.
type RequestObject struct {
	ID     *uuid.UUID      `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type ResponseObject struct {
	Error  *ErrorObject    `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	ID     uuid.UUID       `json:"id"`
}

// ErrorObject carries the HTTP status the same failure would get over REST.
type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
