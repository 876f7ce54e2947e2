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
	"bytes"
	"errors"

	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleMessage(env RequestEnv) (any, error) {
	var params models.MessageParams
	vctx := validation.NewContext(env.Config.MaxMessageLength())
	err := validation.ValidateAndUnmarshalCtx(env.Context, bytes.TrimSpace(env.Params), &params, vctx)
	switch {
	case errors.Is(err, validation.ErrMissingParams):
		return nil, ErrNoMessage
	case errors.Is(err, validation.ErrInvalidParams):
		log.Debug().Err(err).Msg("rejected message body")
		return nil, ErrInvalidJSON
	case params.Message == nil:
		return nil, ErrMissingMessage
	case err != nil:
		return nil, err
	}

	log.Info().Str("remote", env.RemoteAddr).Msg("received message request")
	resp, err := env.Controller.SubmitMessage(env.Context, *params.Message)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStop(env RequestEnv) (any, error) {
	log.Info().Str("remote", env.RemoteAddr).Msg("received stop request")
	if err := env.Controller.StopScroll(env.Context); err != nil {
		return nil, err
	}
	return TextResponse(models.TextScrollingStopped), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStatus(env RequestEnv) (any, error) {
	resp, err := env.Controller.QueryStatus(env.Context)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
