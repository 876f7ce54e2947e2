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

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/network"
	"github.com/matrixclock/matrixclock/pkg/service"
	"github.com/rs/zerolog/log"
)

// Connect brings the network up, showing WIFI while connecting and CONF
// while the setup hotspot is up. A provisioning timeout is returned as
// network.ErrProvisioningTimeout.
func Connect(ctx context.Context, cfg *config.Instance, hw *Hardware) error {
	boot := service.NewBootScreen(cfg, hw.Driver)
	if err := boot.Connecting(); err != nil {
		log.Warn().Err(err).Msg("failed to draw connecting screen")
	}

	//nolint:wrapcheck // sentinel is checked by the caller
	return network.Provision(ctx, hw.Provisioner, cfg.APName(), cfg.ProvisioningTimeout(), func() {
		log.Info().Str("ap", cfg.APName()).Msg("no known network, setup hotspot is up")
		if err := boot.Setup(); err != nil {
			log.Warn().Err(err).Msg("failed to draw setup screen")
		}
	})
}

// RunApp connects to the network and runs the service until a signal
// arrives, the simulator quits or the service stops by itself.
func RunApp(cfg *config.Instance, hw *Hardware) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if hw.Quit != nil {
		go func() {
			select {
			case <-hw.Quit:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	if err := Connect(ctx, cfg, hw); err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("interrupted while connecting")
			return nil
		}
		return err
	}

	stopSvc, svcDone, err := service.Start(cfg, service.Deps{
		Driver: hw.Driver,
		Link:   hw.Link,
	})
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case <-svcDone:
		log.Info().Msg("service shut down internally")
	}

	if err := stopSvc(); err != nil {
		return fmt.Errorf("service stopped with error: %w", err)
	}
	return nil
}
