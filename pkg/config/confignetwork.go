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
	ProviderNetworkManager = "networkmanager"
	ProviderNone           = "none"

	DefaultAPName              = "Clock-Setup"
	DefaultReconnectInterval   = 30 * time.Second
	DefaultProvisioningTimeout = 3 * time.Minute
)

// Network configures link monitoring and the setup hotspot.
type Network struct {
	APName              string `toml:"ap_name"`
	Provider            string `toml:"provider"`
	Interface           string `toml:"interface,omitempty"`
	ReconnectInterval   string `toml:"reconnect_interval,omitempty"`
	ProvisioningTimeout string `toml:"provisioning_timeout,omitempty"`
}

func (c *Instance) APName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Network.APName == "" {
		return DefaultAPName
	}
	return c.vals.Network.APName
}

func (c *Instance) NetworkProvider() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Network.Provider == "" {
		return ProviderNetworkManager
	}
	return c.vals.Network.Provider
}

func (c *Instance) SetNetworkProvider(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Network.Provider = provider
}

// NetworkInterface is the wireless interface to watch. Empty means any.
func (c *Instance) NetworkInterface() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Network.Interface
}

func (c *Instance) ReconnectInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Network.ReconnectInterval, DefaultReconnectInterval)
}

func (c *Instance) ProvisioningTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Network.ProvisioningTimeout, DefaultProvisioningTimeout)
}

func (c *Instance) SetProvisioningTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Network.ProvisioningTimeout = d.String()
}
