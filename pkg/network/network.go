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

// Package network brings the clock online at boot and, when no known
// network is in range, opens a setup hotspot until one is configured.
package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrProvisioningTimeout = errors.New("wifi provisioning timed out")

// Provisioner joins a known network, falling back to an access point named
// apName. onSetup is called once the access point is up. It reports false
// when ctx ends before a network is joined.
type Provisioner interface {
	AutoConnect(ctx context.Context, apName string, onSetup func()) (bool, error)
}

// Provision runs p with an overall timeout. Running out of time is
// ErrProvisioningTimeout.
func Provision(
	ctx context.Context,
	p Provisioner,
	apName string,
	timeout time.Duration,
	onSetup func(),
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Info().Str("ap", apName).Dur("timeout", timeout).Msg("connecting to wifi")
	ok, err := p.AutoConnect(ctx, apName, onSetup)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrProvisioningTimeout
		}
		return fmt.Errorf("wifi provisioning failed: %w", err)
	}
	if !ok {
		return ErrProvisioningTimeout
	}
	log.Info().Msg("wifi connected")
	return nil
}

// Static is used where the network is managed by something else. It is
// always connected and never reconnects.
type Static struct{}

func (Static) Connected(context.Context) (bool, error) { return true, nil }

func (Static) Reconnect() error { return nil }

func (Static) AutoConnect(context.Context, string, func()) (bool, error) { return true, nil }
