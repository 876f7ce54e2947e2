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

// Package cli holds the command line flags shared by the clock binaries.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matrixclock/matrixclock/internal/telemetry"
	"github.com/matrixclock/matrixclock/pkg/api/client"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/helpers"
	"github.com/rs/zerolog/log"
)

var ErrFlagValue = errors.New("flag requires a value")

type Flags struct {
	set     *flag.FlagSet
	Message *string
	Wait    *string
	API     *string
	Stop    *bool
	Status  *bool
	Version *bool
	Daemon  *bool
	Sim     *bool
}

func SetupFlags() *Flags {
	return newFlags(flag.CommandLine)
}

func newFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Message: fs.String(
			"message",
			"",
			"scroll a message on the running clock",
		),
		Stop: fs.Bool(
			"stop",
			false,
			"stop the message scrolling on the running clock",
		),
		Status: fs.Bool(
			"status",
			false,
			"print what the running clock is scrolling",
		),
		Wait: fs.String(
			"wait",
			"",
			"wait for a notification method and print its params",
		),
		API: fs.String(
			"api",
			"",
			"send method:params to the API and print the result",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run in the foreground and log to stderr",
		),
		Sim: fs.Bool(
			"sim",
			false,
			"draw the matrix in the terminal instead of on SPI",
		),
		set: fs,
	}
}

func (f *Flags) passed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Matrix Clock v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// Post runs any client flag against the local instance and exits. It
// returns only when no client flag was given.
func (f *Flags) Post(cfg *config.Instance) {
	handled, err := f.runClient(context.Background(), client.NewLocal(cfg), os.Stdout)
	if !handled {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("client command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func printJSON(out io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func (f *Flags) runClient(ctx context.Context, c *client.Client, out io.Writer) (bool, error) {
	switch {
	case f.passed("message"):
		if strings.TrimSpace(*f.Message) == "" {
			return true, fmt.Errorf("message: %w", ErrFlagValue)
		}
		resp, err := c.SubmitMessage(ctx, *f.Message)
		if err != nil {
			return true, fmt.Errorf("error sending message: %w", err)
		}
		return true, printJSON(out, resp)
	case *f.Stop:
		if err := c.StopScroll(ctx); err != nil {
			return true, fmt.Errorf("error stopping message: %w", err)
		}
		_, err := fmt.Fprintln(out, "Scrolling stopped")
		return true, err
	case *f.Status:
		resp, err := c.QueryStatus(ctx)
		if err != nil {
			return true, fmt.Errorf("error querying status: %w", err)
		}
		return true, printJSON(out, resp)
	case f.passed("wait"):
		if *f.Wait == "" {
			return true, fmt.Errorf("wait: %w", ErrFlagValue)
		}
		params, err := c.WaitNotification(ctx, 0, *f.Wait)
		if err != nil {
			return true, fmt.Errorf("error waiting for notification: %w", err)
		}
		_, err = fmt.Fprintln(out, string(params))
		return true, err
	case f.passed("api"):
		if *f.API == "" {
			return true, fmt.Errorf("api: %w", ErrFlagValue)
		}
		method, params, _ := strings.Cut(*f.API, ":")
		var p any
		if params != "" {
			p = json.RawMessage(params)
		}
		resp, err := c.Call(ctx, method, p)
		if err != nil {
			return true, fmt.Errorf("error calling API: %w", err)
		}
		_, err = fmt.Fprintln(out, string(resp))
		return true, err
	}
	return false, nil
}

// Setup initialises logging, loads the config and turns on error reporting
// if the user opted in. Failures here are fatal.
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	err := helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := telemetry.Init(cfg); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
