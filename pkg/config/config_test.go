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

package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Setenv(CfgEnv, "")
	dir := t.TempDir()

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, CfgFile), cfg.Path())
	assert.FileExists(t, cfg.Path())
	assert.NotEmpty(t, cfg.DeviceID())

	assert.Equal(t, DefaultNTPServer, cfg.NTPServer())
	assert.Equal(t, DriverMAX7219, cfg.DisplayDriver())
	assert.Equal(t, DefaultAPName, cfg.APName())
	assert.Equal(t, 8080, cfg.APIPort())
	assert.Equal(t, ":8080", cfg.APIListen())
	assert.Equal(t, 150*time.Millisecond, cfg.ScrollDelay())
	assert.Equal(t, 3, cfg.MessagePasses())
	assert.Equal(t, 30*time.Second, cfg.ReconnectInterval())
	assert.Equal(t, -3*time.Hour, cfg.UTCOffset())
}

func TestNewConfigKeepsDeviceID(t *testing.T) {
	t.Setenv(CfgEnv, "")
	dir := t.TempDir()

	first, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	second, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, first.DeviceID(), second.DeviceID())
}

func TestNewConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom", "clock.toml")
	t.Setenv(CfgEnv, path)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.FileExists(t, path)
}

func TestLoadPartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CfgFile)
	data := `config_schema = 1

[clock]
utc_offset = "2h"
night_start = 23

[display]
driver = "terminal"
scroll_delay = "80ms"
message_passes = 5

[service]
api_port = 9000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := &Instance{cfgPath: path, defaults: BaseDefaults}
	require.NoError(t, cfg.Load())

	assert.Equal(t, 2*time.Hour, cfg.UTCOffset())
	start, end := cfg.NightHours()
	assert.Equal(t, 23, start)
	assert.Equal(t, DefaultNightEnd, end)
	assert.Equal(t, DriverTerminal, cfg.DisplayDriver())
	assert.Equal(t, 80*time.Millisecond, cfg.ScrollDelay())
	assert.Equal(t, 5, cfg.MessagePasses())
	assert.Equal(t, ":9000", cfg.APIListen())
	assert.Equal(t, DefaultNTPServer, cfg.NTPServer())
}

func TestLoadSchemaMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(path, []byte("config_schema = 99\n"), 0o600))

	cfg := &Instance{cfgPath: path, defaults: BaseDefaults}
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoadInvalidTOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(path, []byte("config_schema = [\n"), 0o600))

	cfg := &Instance{cfgPath: path, defaults: BaseDefaults}
	require.Error(t, cfg.Load())
}

func TestLoadNoPath(t *testing.T) {
	t.Parallel()

	cfg := &Instance{}
	require.Error(t, cfg.Load())
	require.Error(t, cfg.Save())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CfgFile)
	cfg := &Instance{cfgPath: path, vals: BaseDefaults, defaults: BaseDefaults}
	cfg.SetAPIPort(8181)
	cfg.SetMessagePasses(2)
	cfg.SetUTCOffset(5*time.Hour + 30*time.Minute)
	require.NoError(t, cfg.Save())

	loaded := &Instance{cfgPath: path, defaults: BaseDefaults}
	require.NoError(t, loaded.Load())
	assert.Equal(t, 8181, loaded.APIPort())
	assert.Equal(t, 2, loaded.MessagePasses())
	assert.Equal(t, 5*time.Hour+30*time.Minute, loaded.UTCOffset())
	assert.Equal(t, cfg.DeviceID(), loaded.DeviceID())
}

func TestErrorReportingNeedsDSN(t *testing.T) {
	t.Parallel()

	cfg := &Instance{vals: Values{Telemetry: Telemetry{ErrorReporting: true}}}
	assert.False(t, cfg.ErrorReporting())

	cfg.vals.Telemetry.SentryDSN = "https://key@sentry.example.com/1"
	assert.True(t, cfg.ErrorReporting())
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		def  time.Duration
		want time.Duration
	}{
		{name: "empty uses default", in: "", def: time.Second, want: time.Second},
		{name: "invalid uses default", in: "soon", def: time.Second, want: time.Second},
		{name: "valid", in: "250ms", def: time.Second, want: 250 * time.Millisecond},
		{name: "negative", in: "-3h", def: 0, want: -3 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseDuration(tt.in, tt.def))
		})
	}
}

func TestWatchReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), CfgFile)
	cfg := &Instance{cfgPath: path, vals: BaseDefaults, defaults: BaseDefaults}
	require.NoError(t, cfg.Save())
	require.NoError(t, cfg.Load())

	var reloads atomic.Int32
	stop, err := cfg.Watch(func() { reloads.Add(1) })
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop() })

	data := "config_schema = 1\n[display]\nmessage_passes = 7\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	require.Eventually(t, func() bool {
		return cfg.MessagePasses() == 7 && reloads.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)
}
