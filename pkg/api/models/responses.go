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

// MessageResponse echoes an accepted message. Scrolls is a string to match
// the JSON clients already parse.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Scrolls string `json:"scrolls"`
}

type StatusResponse struct {
	Message   string `json:"message"`
	Scrolling bool   `json:"scrolling"`
}

type InfoResponse struct {
	Version   string `json:"version"`
	Mode      string `json:"mode"`
	IP        string `json:"ip"`
	DeviceID  string `json:"deviceId,omitempty"`
	Uptime    int64  `json:"uptime"`
	Connected bool   `json:"connected"`
}
