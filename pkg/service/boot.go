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

package service

import (
	"fmt"

	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/display"
	"github.com/matrixclock/matrixclock/pkg/matrix"
)

// BootScreen shows the status codes drawn while the clock is coming online,
// before the controller takes over the display.
type BootScreen struct {
	compositor *display.Compositor
}

func NewBootScreen(cfg *config.Instance, drv matrix.Driver) *BootScreen {
	return &BootScreen{compositor: display.NewCompositor(drv, brightnessPolicy(cfg))}
}

// Connecting shows "WIFI".
func (b *BootScreen) Connecting() error {
	if err := b.compositor.RenderConnecting(); err != nil {
		return fmt.Errorf("failed to show connecting screen: %w", err)
	}
	return nil
}

// Setup shows "CONF" while the setup hotspot is up.
func (b *BootScreen) Setup() error {
	if err := b.compositor.RenderSetup(); err != nil {
		return fmt.Errorf("failed to show setup screen: %w", err)
	}
	return nil
}
