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
	DriverMAX7219  = "max7219"
	DriverTerminal = "terminal"

	DefaultScrollDelay      = 150 * time.Millisecond
	DefaultMessagePasses    = 3
	DefaultMaxMessageLength = 256
)

type Display struct {
	MessagePasses    *int   `toml:"message_passes,omitempty"`
	MaxMessageLength *int   `toml:"max_message_length,omitempty"`
	AnnounceIP       *bool  `toml:"announce_ip,omitempty"`
	Driver           string `toml:"driver"`
	SPIPort          string `toml:"spi_port,omitempty"`
	ScrollDelay      string `toml:"scroll_delay,omitempty"`
}

func (c *Instance) DisplayDriver() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.Driver == "" {
		return DriverMAX7219
	}
	return c.vals.Display.Driver
}

func (c *Instance) SetDisplayDriver(driver string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Driver = driver
}

// SPIPort is the periph.io SPI port name. Empty selects the first port.
func (c *Instance) SPIPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display.SPIPort
}

func (c *Instance) ScrollDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := parseDuration(c.vals.Display.ScrollDelay, DefaultScrollDelay)
	if d <= 0 {
		return DefaultScrollDelay
	}
	return d
}

// MessagePasses is how many times a user message scrolls before the clock
// comes back.
func (c *Instance) MessagePasses() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.MessagePasses == nil || *c.vals.Display.MessagePasses < 1 {
		return DefaultMessagePasses
	}
	return *c.vals.Display.MessagePasses
}

func (c *Instance) SetMessagePasses(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.MessagePasses = &n
}

func (c *Instance) MaxMessageLength() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.MaxMessageLength == nil || *c.vals.Display.MaxMessageLength < 1 {
		return DefaultMaxMessageLength
	}
	return *c.vals.Display.MaxMessageLength
}

func (c *Instance) AnnounceIP() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.AnnounceIP == nil {
		return true
	}
	return *c.vals.Display.AnnounceIP
}

func (c *Instance) SetAnnounceIP(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.AnnounceIP = &enabled
}
