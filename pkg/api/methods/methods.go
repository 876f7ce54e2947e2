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

package methods

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/api/validation"
	"github.com/matrixclock/matrixclock/pkg/config"
)

var (
	ErrNoMessage      = errors.New(models.ErrTextNoMessage)
	ErrInvalidJSON    = errors.New(models.ErrTextInvalidJSON)
	ErrMissingMessage = errors.New(models.ErrTextMissingMessage)
)

// Controller is the display loop as seen from the API. Every call is
// executed on the loop goroutine and may fail with models.ErrNotRunning.
type Controller interface {
	SubmitMessage(ctx context.Context, text string) (models.MessageResponse, error)
	StopScroll(ctx context.Context) error
	QueryStatus(ctx context.Context) (models.StatusResponse, error)
	Info(ctx context.Context) (models.InfoResponse, error)
}

type RequestEnv struct {
	Context    context.Context
	Controller Controller
	Config     *config.Instance
	Params     json.RawMessage
	RemoteAddr string
}

type Handler func(env RequestEnv) (any, error)

// TextResponse is written to HTTP clients as text/plain.
type TextResponse string

// StatusCode maps a handler error to the HTTP status returned for it.
func StatusCode(err error) int {
	var ve *validation.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoMessage),
		errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrMissingMessage),
		errors.Is(err, models.ErrInvalidMessage),
		errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotRunning):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
