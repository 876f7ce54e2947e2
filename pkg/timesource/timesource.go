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

// Package timesource provides wall clock time corrected over NTP and
// shifted to a fixed UTC offset.
package timesource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/jonboulle/clockwork"
	"github.com/matrixclock/matrixclock/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// ErrNoServer is returned when no server is configured.
var ErrNoServer = errors.New("no ntp server configured")

const (
	DefaultInterval = 60 * time.Second
	queryTimeout    = 5 * time.Second
)

// Source is what the clock face reads the time from.
type Source interface {
	Hours() int
	Minutes() int
	// Update pulls the latest sync. It may do nothing between syncs and
	// never blocks.
	Update()
}

// QueryFunc returns how far the local clock is behind the server.
type QueryFunc func(ctx context.Context, server string) (time.Duration, error)

// QueryNTP asks server for the local clock offset.
func QueryNTP(ctx context.Context, server string) (time.Duration, error) {
	timeout := queryTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("ntp response from %s: %w", server, err)
	}
	return resp.ClockOffset, nil
}

// NTP is a Source that corrects the system clock with periodic NTP queries.
// Queries run in the background; until the first one succeeds the system
// clock is used as is.
type NTP struct {
	clock       clockwork.Clock
	query       QueryFunc
	lastAttempt time.Time
	lastSync    time.Time
	server      string
	wg          sync.WaitGroup
	interval    time.Duration
	utcOffset   time.Duration
	clockOffset time.Duration
	mu          syncutil.Mutex
	inflight    bool
	synced      bool
}

type Option func(*NTP)

func WithClock(c clockwork.Clock) Option {
	return func(n *NTP) { n.clock = c }
}

func WithQuery(q QueryFunc) Option {
	return func(n *NTP) { n.query = q }
}

func WithInterval(d time.Duration) Option {
	return func(n *NTP) { n.interval = d }
}

func WithUTCOffset(d time.Duration) Option {
	return func(n *NTP) { n.utcOffset = d }
}

func NewNTP(server string, opts ...Option) *NTP {
	n := &NTP{
		server:   server,
		clock:    clockwork.NewRealClock(),
		query:    QueryNTP,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sync queries the server and waits for the answer.
func (n *NTP) Sync(ctx context.Context) error {
	n.mu.Lock()
	n.lastAttempt = n.clock.Now()
	n.mu.Unlock()
	return n.sync(ctx)
}

func (n *NTP) sync(ctx context.Context) error {
	if n.server == "" {
		return ErrNoServer
	}
	offset, err := n.query(ctx, n.server)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.clockOffset = offset
	n.lastSync = n.clock.Now()
	n.synced = true
	n.mu.Unlock()
	log.Debug().Dur("offset", offset).Str("server", n.server).Msg("time synced")
	return nil
}

// Update starts a background query when the sync interval has passed and
// no query is already running.
func (n *NTP) Update() {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.clock.Now()
	if n.inflight || (!n.lastAttempt.IsZero() && now.Sub(n.lastAttempt) < n.interval) {
		return
	}
	n.inflight = true
	n.lastAttempt = now

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if err := n.sync(ctx); err != nil {
			log.Warn().Err(err).Msg("time sync failed")
		}
		n.mu.Lock()
		n.inflight = false
		n.mu.Unlock()
	}()
}

// Wait blocks until background queries have finished.
func (n *NTP) Wait() {
	n.wg.Wait()
}

// Now is the corrected time in the configured zone.
func (n *NTP) Now() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	zone := time.FixedZone("", int(n.utcOffset/time.Second))
	return n.clock.Now().Add(n.clockOffset).In(zone)
}

func (n *NTP) Hours() int {
	return n.Now().Hour()
}

func (n *NTP) Minutes() int {
	return n.Now().Minute()
}

func (n *NTP) SetUTCOffset(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.utcOffset = d
}

func (n *NTP) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.interval = d
}

// LastSync returns when the last successful query finished.
func (n *NTP) LastSync() (time.Time, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastSync, n.synced
}

var _ Source = (*NTP)(nil)
