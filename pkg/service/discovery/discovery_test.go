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

package discovery

import (
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upIface = net.Interface{Name: "wlan0", Flags: net.FlagUp | net.FlagMulticast}

type fakeRegistry struct {
	err      error
	txt      []string
	calls    atomic.Int32
	shutdown atomic.Int32
	port     int
}

func (f *fakeRegistry) register(
	_, service, _ string,
	port int,
	text []string,
	_ []net.Interface,
) (func(), error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if service != ServiceType {
		return nil, errors.New("wrong service type")
	}
	f.port = port
	f.txt = text
	return func() { f.shutdown.Add(1) }, nil
}

func newTestService(t *testing.T, reg *fakeRegistry, ifaces []net.Interface) *Service {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	s := New(cfg)
	s.register = reg.register
	s.interfaces = func() ([]net.Interface, error) { return ifaces, nil }
	return s
}

func TestFilterInterfaces(t *testing.T) {
	t.Parallel()

	ifaces := []net.Interface{
		upIface,
		{Name: "eth0", Flags: net.FlagUp | net.FlagMulticast},
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback | net.FlagMulticast},
		{Name: "docker0", Flags: net.FlagUp | net.FlagMulticast},
		{Name: "wlan1", Flags: net.FlagMulticast},
		{Name: "ppp0", Flags: net.FlagUp},
	}

	names := func(in []net.Interface) []string {
		out := make([]string, 0, len(in))
		for _, i := range in {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"wlan0", "eth0"}, names(filterInterfaces(ifaces, "")))
	assert.Equal(t, []string{"eth0"}, names(filterInterfaces(ifaces, "eth0")))
	assert.Empty(t, filterInterfaces(ifaces, "docker0"))
}

func TestStartRegisters(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	s := newTestService(t, reg, []net.Interface{upIface})

	require.NoError(t, s.Start())
	assert.Equal(t, int32(1), reg.calls.Load())
	assert.Equal(t, config.DefaultAPIPort, reg.port)
	assert.Contains(t, reg.txt, "version="+config.AppVersion)
	assert.NotEmpty(t, s.InstanceName())

	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), reg.shutdown.Load())
}

func TestStartRetriesInBackground(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{}
	s := newTestService(t, reg, nil)
	clock := clockwork.NewFakeClock()
	s.clock = clock

	require.NoError(t, s.Start())
	assert.Equal(t, int32(0), reg.calls.Load())

	s.interfaces = func() ([]net.Interface, error) { return []net.Interface{upIface}, nil }
	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(retryInterval)

	require.Eventually(t, func() bool {
		return reg.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestStopBeforeStart(t *testing.T) {
	t.Parallel()

	s := newTestService(t, &fakeRegistry{}, nil)
	s.Stop()
}
