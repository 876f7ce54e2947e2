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
	"time"

	"github.com/mackerelio/go-osstat/uptime"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/helpers"
	"github.com/rs/zerolog/log"
)

var (
	localIP      = helpers.GetLocalIP
	systemUptime = uptime.Get
)

//nolint:gocritic // single-use parameter in API handler
func HandleInfo(env RequestEnv) (any, error) {
	resp, err := env.Controller.Info(env.Context)
	if err != nil {
		return nil, err
	}

	resp.Version = config.AppVersion
	resp.DeviceID = env.Config.DeviceID()
	resp.IP = localIP()

	up, err := systemUptime()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read system uptime")
	} else {
		resp.Uptime = int64(up / time.Second)
	}
	return resp, nil
}
