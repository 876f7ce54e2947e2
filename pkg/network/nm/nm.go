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

// Package nm drives NetworkManager over the system D-Bus. It watches the
// wifi link, asks for reconnects and runs the setup hotspot.
package nm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jonboulle/clockwork"
	"github.com/matrixclock/matrixclock/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

const (
	nmService             = "org.freedesktop.NetworkManager"
	nmPath                = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmInterface           = "org.freedesktop.NetworkManager"
	deviceInterface       = nmInterface + ".Device"
	settingsConnInterface = nmInterface + ".Settings.Connection"
	propertiesGet         = "org.freedesktop.DBus.Properties.Get"

	// NM_DEVICE_TYPE_WIFI and NM_STATE_CONNECTED_SITE
	deviceTypeWifi     = 2
	stateConnectedSite = 60

	DefaultPollInterval = time.Second
	DefaultConnectWait  = 30 * time.Second
	callTimeout         = 5 * time.Second
)

var ErrNoWifiDevice = errors.New("no wifi device found")

// object is the part of dbus.BusObject this package calls.
type object interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Client implements connectivity.Link and network.Provisioner.
type Client struct {
	clock           clockwork.Clock
	object          func(dbus.ObjectPath) object
	closeConn       func() error
	iface           string
	hotspotActive   dbus.ObjectPath
	hotspotSettings dbus.ObjectPath
	pollInterval    time.Duration
	connectWait     time.Duration
	wg              sync.WaitGroup
	mu              syncutil.Mutex
	reconnecting    bool
}

type Option func(*Client)

func WithClock(c clockwork.Clock) Option {
	return func(n *Client) { n.clock = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(n *Client) { n.pollInterval = d }
}

// WithConnectWait sets how long to wait for a saved network before the
// hotspot is started.
func WithConnectWait(d time.Duration) Option {
	return func(n *Client) { n.connectWait = d }
}

// New connects to the system bus. iface pins the wifi device by name; empty
// picks the first wifi device NetworkManager knows about.
func New(iface string, opts ...Option) (*Client, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system D-Bus: %w", err)
	}
	c := newClient(func(path dbus.ObjectPath) object {
		return conn.Object(nmService, path)
	}, iface, opts...)
	c.closeConn = conn.Close
	return c, nil
}

func newClient(obj func(dbus.ObjectPath) object, iface string, opts ...Option) *Client {
	c := &Client{
		clock:        clockwork.NewRealClock(),
		object:       obj,
		iface:        iface,
		pollInterval: DefaultPollInterval,
		connectWait:  DefaultConnectWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close waits for pending reconnects and drops the bus connection.
func (c *Client) Close() error {
	c.wg.Wait()
	if c.closeConn == nil {
		return nil
	}
	if err := c.closeConn(); err != nil {
		return fmt.Errorf("failed to close D-Bus connection: %w", err)
	}
	return nil
}

func (c *Client) property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := c.object(path).CallWithContext(ctx, propertiesGet, 0, iface, name)
	if err := call.Store(&v); err != nil {
		return dbus.Variant{}, fmt.Errorf("failed to read %s.%s: %w", iface, name, err)
	}
	return v, nil
}

// Connected is true when NetworkManager reports at least site connectivity
// on something other than the setup hotspot.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	v, err := c.property(ctx, nmPath, nmInterface, "State")
	if err != nil {
		return false, err
	}
	state, ok := v.Value().(uint32)
	if !ok {
		return false, fmt.Errorf("unexpected NetworkManager state type %s", v.Signature())
	}
	if state < stateConnectedSite {
		return false, nil
	}

	c.mu.Lock()
	hotspot := c.hotspotActive
	c.mu.Unlock()
	if hotspot == "" {
		return true, nil
	}

	v, err = c.property(ctx, nmPath, nmInterface, "PrimaryConnection")
	if err != nil {
		return false, err
	}
	primary, _ := v.Value().(dbus.ObjectPath)
	return primary != hotspot && primary != "/", nil
}

func (c *Client) wifiDevice(ctx context.Context) (dbus.ObjectPath, error) {
	nm := c.object(nmPath)

	if c.iface != "" {
		var device dbus.ObjectPath
		call := nm.CallWithContext(ctx, nmInterface+".GetDeviceByIpIface", 0, c.iface)
		if err := call.Store(&device); err != nil {
			return "", fmt.Errorf("failed to find device %s: %w", c.iface, err)
		}
		return device, nil
	}

	var devices []dbus.ObjectPath
	if err := nm.CallWithContext(ctx, nmInterface+".GetDevices", 0).Store(&devices); err != nil {
		return "", fmt.Errorf("failed to list devices: %w", err)
	}
	for _, device := range devices {
		v, err := c.property(ctx, device, deviceInterface, "DeviceType")
		if err != nil {
			log.Debug().Err(err).Str("device", string(device)).Msg("skipping device")
			continue
		}
		if t, ok := v.Value().(uint32); ok && t == deviceTypeWifi {
			return device, nil
		}
	}
	return "", ErrNoWifiDevice
}

// activate lets NetworkManager pick the best saved connection for the
// wifi device.
func (c *Client) activate(ctx context.Context) error {
	device, err := c.wifiDevice(ctx)
	if err != nil {
		return err
	}
	var active dbus.ObjectPath
	call := c.object(nmPath).CallWithContext(ctx, nmInterface+".ActivateConnection", 0,
		dbus.ObjectPath("/"), device, dbus.ObjectPath("/"))
	if err := call.Store(&active); err != nil {
		return fmt.Errorf("failed to activate connection: %w", err)
	}
	log.Debug().Str("active", string(active)).Msg("activating wifi connection")
	return nil
}

// Reconnect starts an activation in the background. A call made while an
// earlier one is still running does nothing.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	if c.reconnecting {
		c.mu.Unlock()
		return nil
	}
	c.reconnecting = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := c.activate(ctx); err != nil {
			log.Warn().Err(err).Msg("wifi reconnect failed")
		}
		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()
	}()
	return nil
}

// AutoConnect tries the saved networks first. If none comes up within the
// connect wait it starts an open hotspot named apName, calls onSetup, and
// waits for another connection to take over until ctx ends.
func (c *Client) AutoConnect(ctx context.Context, apName string, onSetup func()) (bool, error) {
	if ok, err := c.Connected(ctx); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}

	if err := c.activate(ctx); err != nil {
		log.Info().Err(err).Msg("no saved wifi network could be activated")
	} else if c.waitConnected(ctx, c.connectWait) {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, nil
	}

	if err := c.startHotspot(ctx, apName); err != nil {
		return false, err
	}
	defer c.stopHotspot()

	if onSetup != nil {
		onSetup()
	}
	return c.waitConnected(ctx, 0), nil
}

// waitConnected polls until connected, ctx ends or limit passes. A zero
// limit waits on ctx alone.
func (c *Client) waitConnected(ctx context.Context, limit time.Duration) bool {
	ticker := c.clock.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if limit > 0 {
		timer := c.clock.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.Chan()
	}

	for {
		ok, err := c.Connected(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("connectivity check failed")
		}
		if ok {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case <-ticker.Chan():
		}
	}
}

func hotspotSettings(apName string) map[string]map[string]dbus.Variant {
	return map[string]map[string]dbus.Variant{
		"connection": {
			"id":          dbus.MakeVariant(apName),
			"type":        dbus.MakeVariant("802-11-wireless"),
			"autoconnect": dbus.MakeVariant(false),
		},
		"802-11-wireless": {
			"ssid": dbus.MakeVariant([]byte(apName)),
			"mode": dbus.MakeVariant("ap"),
		},
		"ipv4": {"method": dbus.MakeVariant("shared")},
		"ipv6": {"method": dbus.MakeVariant("ignore")},
	}
}

func (c *Client) startHotspot(ctx context.Context, apName string) error {
	device, err := c.wifiDevice(ctx)
	if err != nil {
		return err
	}

	var settings, active dbus.ObjectPath
	call := c.object(nmPath).CallWithContext(ctx, nmInterface+".AddAndActivateConnection", 0,
		hotspotSettings(apName), device, dbus.ObjectPath("/"))
	if err := call.Store(&settings, &active); err != nil {
		return fmt.Errorf("failed to start hotspot %s: %w", apName, err)
	}

	c.mu.Lock()
	c.hotspotSettings = settings
	c.hotspotActive = active
	c.mu.Unlock()

	log.Info().Str("ssid", apName).Msg("setup hotspot started")
	return nil
}

// stopHotspot removes the hotspot connection. It may already have been
// replaced by the newly configured network.
func (c *Client) stopHotspot() {
	c.mu.Lock()
	settings, active := c.hotspotSettings, c.hotspotActive
	c.hotspotSettings, c.hotspotActive = "", ""
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if active != "" {
		call := c.object(nmPath).CallWithContext(ctx, nmInterface+".DeactivateConnection", 0, active)
		if call.Err != nil {
			log.Debug().Err(call.Err).Msg("hotspot already inactive")
		}
	}
	if settings != "" {
		call := c.object(settings).CallWithContext(ctx, settingsConnInterface+".Delete", 0)
		if call.Err != nil {
			log.Warn().Err(call.Err).Msg("failed to delete hotspot connection")
		}
	}
	log.Info().Msg("setup hotspot stopped")
}
