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

import "time"

const (
	DefaultNTPServer       = "pool.ntp.org"
	DefaultNTPInterval     = 60 * time.Second
	DefaultUTCOffset       = -3 * time.Hour
	DefaultDayBrightness   = 3
	DefaultNightBrightness = 0
	DefaultNightStart      = 22
	DefaultNightEnd        = 6
	MaxBrightness          = 15
)

// Clock configures the time source and the time-of-day brightness policy.
type Clock struct {
	UTCOffset       *string `toml:"utc_offset,omitempty"`
	DayBrightness   *int    `toml:"day_brightness,omitempty"`
	NightBrightness *int    `toml:"night_brightness,omitempty"`
	NightStart      *int    `toml:"night_start,omitempty"`
	NightEnd        *int    `toml:"night_end,omitempty"`
	NTPServer       string  `toml:"ntp_server,omitempty"`
	NTPInterval     string  `toml:"ntp_interval,omitempty"`
}

func (c *Instance) NTPServer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Clock.NTPServer == "" {
		return DefaultNTPServer
	}
	return c.vals.Clock.NTPServer
}

// NTPInterval is the minimum time between two NTP queries.
func (c *Instance) NTPInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Clock.NTPInterval, DefaultNTPInterval)
}

// UTCOffset is the fixed offset applied to NTP time, e.g. "-3h" for GMT-3.
func (c *Instance) UTCOffset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Clock.UTCOffset == nil {
		return DefaultUTCOffset
	}
	return parseDuration(*c.vals.Clock.UTCOffset, DefaultUTCOffset)
}

func (c *Instance) SetUTCOffset(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := offset.String()
	c.vals.Clock.UTCOffset = &s
}

func (c *Instance) DayBrightness() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return brightness(c.vals.Clock.DayBrightness, DefaultDayBrightness)
}

func (c *Instance) NightBrightness() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return brightness(c.vals.Clock.NightBrightness, DefaultNightBrightness)
}

// NightHours returns the hour dimming starts and the hour it ends. The
// range wraps midnight when start > end.
func (c *Instance) NightHours() (start, end int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return hour(c.vals.Clock.NightStart, DefaultNightStart),
		hour(c.vals.Clock.NightEnd, DefaultNightEnd)
}

func brightness(v *int, def int) uint8 {
	if v == nil {
		return uint8(def)
	}
	switch {
	case *v < 0:
		return 0
	case *v > MaxBrightness:
		return MaxBrightness
	default:
		return uint8(*v)
	}
}

func hour(v *int, def int) int {
	if v == nil || *v < 0 || *v > 23 {
		return def
	}
	return *v
}
