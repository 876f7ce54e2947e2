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

package notifications

import (
	"encoding/json"

	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// sendNotification never blocks the caller. The controller loop sends these
// and must keep scrolling even when nobody is draining the channel.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("error marshalling notification params")
			return
		}
		params = b
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification channel full, dropping notification")
	}
}

func ModeChanged(ns chan<- models.Notification, payload models.ModeChangedParams) {
	sendNotification(ns, models.NotificationModeChanged, payload)
}

func MessageStarted(ns chan<- models.Notification, payload models.MessageEventParams) {
	sendNotification(ns, models.NotificationMessageStarted, payload)
}

func MessageFinished(ns chan<- models.Notification, payload models.MessageEventParams) {
	sendNotification(ns, models.NotificationMessageFinished, payload)
}

func MessageStopped(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationMessageStopped, nil)
}

func Connectivity(ns chan<- models.Notification, connected bool) {
	sendNotification(ns, models.NotificationConnectivity, models.ConnectivityParams{
		Connected: connected,
	})
}
