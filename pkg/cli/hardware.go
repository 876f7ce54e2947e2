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
	"errors"
	"fmt"

	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/matrixclock/matrixclock/pkg/matrix/max7219"
	"github.com/matrixclock/matrixclock/pkg/matrix/termsim"
	"github.com/matrixclock/matrixclock/pkg/network"
	"github.com/matrixclock/matrixclock/pkg/network/nm"
	"github.com/matrixclock/matrixclock/pkg/service/connectivity"
	"github.com/rs/zerolog/log"
)

// Hardware is the display and network the service runs on.
type Hardware struct {
	Driver      matrix.Driver
	Link        connectivity.Link
	Provisioner network.Provisioner
	// Quit is closed when the simulator window asks to exit. It is nil for
	// real hardware.
	Quit   <-chan struct{}
	closer []func() error
}

// Close releases the network client and the display.
func (h *Hardware) Close() error {
	var errs []error
	for i := len(h.closer) - 1; i >= 0; i-- {
		errs = append(errs, h.closer[i]())
	}
	return errors.Join(errs...)
}

// OpenHardware opens the configured display driver and network provider.
// sim forces the terminal simulator and leaves the network alone.
func OpenHardware(cfg *config.Instance, sim bool) (*Hardware, error) {
	h := &Hardware{}

	driver := cfg.DisplayDriver()
	if sim {
		driver = config.DriverTerminal
	}

	switch driver {
	case config.DriverTerminal:
		screen, err := termsim.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open terminal display: %w", err)
		}
		h.Driver = screen
		h.Quit = screen.Quit()
	case config.DriverMAX7219:
		dev, err := max7219.Open(cfg.SPIPort())
		if err != nil {
			return nil, fmt.Errorf("failed to open matrix: %w", err)
		}
		h.Driver = dev
	default:
		return nil, fmt.Errorf("unknown display driver: %s", driver)
	}
	h.closer = append(h.closer, h.Driver.Close)

	provider := cfg.NetworkProvider()
	if sim {
		provider = config.ProviderNone
	}

	switch provider {
	case config.ProviderNetworkManager:
		client, err := nm.New(cfg.NetworkInterface())
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("failed to connect to NetworkManager: %w", err)
		}
		h.Link = client
		h.Provisioner = client
		h.closer = append(h.closer, client.Close)
	case config.ProviderNone:
		log.Info().Msg("network managed externally")
		h.Link = network.Static{}
		h.Provisioner = network.Static{}
	default:
		_ = h.Close()
		return nil, fmt.Errorf("unknown network provider: %s", provider)
	}

	return h, nil
}
