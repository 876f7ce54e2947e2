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
	"testing"
	"time"

	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/matrixclock/matrixclock/pkg/network"
	"github.com/matrixclock/matrixclock/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hotspotOnly never finds a network.
type hotspotOnly struct{}

func (hotspotOnly) AutoConnect(ctx context.Context, _ string, onSetup func()) (bool, error) {
	onSetup()
	<-ctx.Done()
	return false, nil
}

func expectedFrame(t *testing.T, cfg *config.Instance, draw func(*service.BootScreen) error) matrix.Framebuffer {
	t.Helper()
	drv := matrix.NewMemory()
	require.NoError(t, draw(service.NewBootScreen(cfg, drv)))
	return *drv.Frame()
}

func TestConnectOnline(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	drv := matrix.NewMemory()
	hw := &Hardware{Driver: drv, Link: network.Static{}, Provisioner: network.Static{}}

	require.NoError(t, Connect(context.Background(), cfg, hw))
	assert.Equal(t, expectedFrame(t, cfg, (*service.BootScreen).Connecting), *drv.Frame())
}

func TestConnectProvisioningTimeout(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	cfg.SetProvisioningTimeout(20 * time.Millisecond)

	drv := matrix.NewMemory()
	hw := &Hardware{Driver: drv, Link: network.Static{}, Provisioner: hotspotOnly{}}

	err = Connect(context.Background(), cfg, hw)
	require.ErrorIs(t, err, network.ErrProvisioningTimeout)
	assert.Equal(t, expectedFrame(t, cfg, (*service.BootScreen).Setup), *drv.Frame())
}
