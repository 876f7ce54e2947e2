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

package helpers

import (
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cidr(t *testing.T, s string) net.Addr {
	t.Helper()
	ip, ipnet, err := net.ParseCIDR(s)
	require.NoError(t, err)
	ipnet.IP = ip
	return ipnet
}

func TestFirstPrivateIPv4(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		want  string
		addrs []string
	}{
		{name: "none", addrs: nil, want: ""},
		{name: "loopback only", addrs: []string{"127.0.0.1/8"}, want: ""},
		{name: "public skipped", addrs: []string{"8.8.8.8/24", "192.168.0.12/24"}, want: "192.168.0.12"},
		{name: "ipv6 skipped", addrs: []string{"fd00::1/64", "10.1.2.3/8"}, want: "10.1.2.3"},
		{name: "first wins", addrs: []string{"172.16.0.5/12", "192.168.1.2/24"}, want: "172.16.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addrs := make([]net.Addr, 0, len(tt.addrs))
			for _, a := range tt.addrs {
				addrs = append(addrs, cidr(t, a))
			}
			assert.Equal(t, tt.want, firstPrivateIPv4(addrs))
		})
	}
}

func TestAnnouncementText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "IP: 192.168.1.9", AnnouncementText("192.168.1.9"))
	assert.Empty(t, AnnouncementText(""))
}

func TestPaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, config.AppName, filepath.Base(LogDir()))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// Not parallel: replaces the global logger.
func TestInitLogging(t *testing.T) {
	prev, prevWriter := log.Logger, logWriter
	t.Cleanup(func() { log.Logger, logWriter = prev, prevWriter })

	dir := filepath.Join(t.TempDir(), "logs", "nested")
	var sb strings.Builder
	require.NoError(t, InitLogging(dir, []io.Writer{&sb}))

	log.Info().Msg("hello from test")

	data, err := os.ReadFile(filepath.Join(dir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, sb.String(), "hello from test")

	_, err = LogWriter().Write([]byte("raw line\n"))
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "raw line")
}

// Not parallel: replaces the global logger.
func TestInitLoggingBadDir(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	err := InitLogging(filepath.Join(file, "sub"), []io.Writer{failingWriter{}})
	require.Error(t, err)
}
