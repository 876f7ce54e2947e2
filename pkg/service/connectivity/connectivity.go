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

// Package connectivity tracks whether the clock is online and paces
// reconnect attempts while it is not.
package connectivity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matrixclock/matrixclock/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval      = time.Second
	DefaultReconnectInterval = 30 * time.Second
	DefaultCheckTimeout      = 500 * time.Millisecond
)

// Link is the network link being watched.
type Link interface {
	Connected(ctx context.Context) (bool, error)
	// Reconnect asks for a reconnect and returns without waiting for it.
	Reconnect() error
}

type State struct {
	LastCheck     time.Time
	LastReconnect time.Time
	Connected     bool
}

// Monitor caches the link state between polls. Polls run in the
// background so Check never waits on the link.
type Monitor struct {
	link              Link
	state             State
	wg                sync.WaitGroup
	pollInterval      time.Duration
	reconnectInterval time.Duration
	checkTimeout      time.Duration
	mu                syncutil.Mutex
	inflight          bool
}

type Option func(*Monitor)

func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) { m.pollInterval = d }
}

func WithReconnectInterval(d time.Duration) Option {
	return func(m *Monitor) { m.reconnectInterval = d }
}

func WithCheckTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.checkTimeout = d }
}

// NewMonitor starts out assuming the link is up until a poll says otherwise.
func NewMonitor(link Link, opts ...Option) *Monitor {
	m := &Monitor{
		link:              link,
		state:             State{Connected: true},
		pollInterval:      DefaultPollInterval,
		reconnectInterval: DefaultReconnectInterval,
		checkTimeout:      DefaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) SetReconnectInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnectInterval = d
}

// Check returns the cached link state. When the poll interval has passed
// and no poll is running it starts one in the background; its answer shows
// up on a later Check. A failed poll counts as disconnected.
func (m *Monitor) Check(ctx context.Context, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight || (!m.state.LastCheck.IsZero() && now.Sub(m.state.LastCheck) < m.pollInterval) {
		return m.state.Connected
	}
	m.inflight = true
	m.state.LastCheck = now

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.poll(ctx)
	}()
	return m.state.Connected
}

// Poll queries the link and waits for the answer.
func (m *Monitor) Poll(ctx context.Context, now time.Time) bool {
	m.mu.Lock()
	m.inflight = true
	m.state.LastCheck = now
	m.mu.Unlock()
	return m.poll(ctx)
}

func (m *Monitor) poll(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	defer cancel()
	connected, err := m.link.Connected(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("link check failed")
		connected = false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = false
	if connected != m.state.Connected {
		log.Info().Bool("connected", connected).Msg("link state changed")
	}
	m.state.Connected = connected
	return connected
}

// Wait blocks until background polls have finished.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// CheckAndMaybeReconnect requests a reconnect if none was requested within
// the reconnect interval. The first request goes out immediately. It
// reports whether a request was made.
func (m *Monitor) CheckAndMaybeReconnect(now time.Time) (bool, error) {
	m.mu.Lock()
	if !m.state.LastReconnect.IsZero() && now.Sub(m.state.LastReconnect) < m.reconnectInterval {
		m.mu.Unlock()
		return false, nil
	}
	m.state.LastReconnect = now
	m.mu.Unlock()

	log.Info().Msg("requesting network reconnect")
	if err := m.link.Reconnect(); err != nil {
		return true, fmt.Errorf("reconnect request failed: %w", err)
	}
	return true, nil
}

// ResetReconnect lets the next outage reconnect straight away.
func (m *Monitor) ResetReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastReconnect = time.Time{}
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
