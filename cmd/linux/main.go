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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matrixclock/matrixclock/internal/telemetry"
	"github.com/matrixclock/matrixclock/pkg/cli"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/helpers"
	"github.com/matrixclock/matrixclock/pkg/network"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	// the simulator owns the terminal, so only log to stderr without it
	var logWriters []io.Writer
	if *flags.Daemon && !*flags.Sim {
		logWriters = []io.Writer{helpers.ConsoleWriter()}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)
	defer telemetry.Close()

	flags.Post(cfg)

	hw, err := cli.OpenHardware(cfg, *flags.Sim)
	if err != nil {
		log.Error().Err(err).Msg("error opening hardware")
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing hardware")
		}
	}()

	err = cli.RunApp(cfg, hw)
	if errors.Is(err, network.ErrProvisioningTimeout) {
		log.Error().Msg("no network configured before the setup timeout")
	}
	return err
}
