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

// MessageParams is the body of POST /api/message and of MQTT source
// payloads.
type MessageParams struct {
	Message *string `json:"message" validate:"required,displaytext,msglen"`
}

type ModeChangedParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MessageEventParams struct {
	Message string `json:"message"`
	Purpose string `json:"purpose"`
	Passes  int    `json:"passes"`
}

type ConnectivityParams struct {
	Connected bool `json:"connected"`
}
