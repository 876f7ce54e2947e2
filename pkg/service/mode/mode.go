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

// Package mode decides, once per loop iteration, whether the clock, a
// scrolling message or the error screen owns the matrix.
package mode

import (
	"context"
	"time"

	"github.com/matrixclock/matrixclock/pkg/display"
	"github.com/matrixclock/matrixclock/pkg/service/connectivity"
	"github.com/matrixclock/matrixclock/pkg/service/scroll"
	"github.com/matrixclock/matrixclock/pkg/timesource"
	"github.com/rs/zerolog/log"
)

const DefaultClockInterval = time.Second

type DisplayMode int

const (
	Clock DisplayMode = iota
	Scrolling
	Error
)

func (m DisplayMode) String() string {
	switch m {
	case Clock:
		return "clock"
	case Scrolling:
		return "scrolling"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Renderer is the part of the display compositor the arbiter draws with
// directly. Scrolling goes through the engine.
type Renderer interface {
	RenderClock(s display.ClockSnapshot) error
	RenderError() error
}

// ChangeFunc is called after every mode transition.
type ChangeFunc func(from, to DisplayMode)

type Arbiter struct {
	engine        *scroll.Engine
	monitor       *connectivity.Monitor
	renderer      Renderer
	time          timesource.Source
	onChange      ChangeFunc
	lastClock     time.Time
	snapshot      display.ClockSnapshot
	clockInterval time.Duration
	mode          DisplayMode
	colonVisible  bool
	forceClock    bool
}

type Option func(*Arbiter)

func WithClockInterval(d time.Duration) Option {
	return func(a *Arbiter) { a.clockInterval = d }
}

func WithChangeFunc(fn ChangeFunc) Option {
	return func(a *Arbiter) { a.onChange = fn }
}

func New(
	engine *scroll.Engine,
	monitor *connectivity.Monitor,
	renderer Renderer,
	ts timesource.Source,
	opts ...Option,
) *Arbiter {
	a := &Arbiter{
		engine:        engine,
		monitor:       monitor,
		renderer:      renderer,
		time:          ts,
		clockInterval: DefaultClockInterval,
		mode:          Clock,
		colonVisible:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Step runs one iteration. In priority order: a lost link shows the error
// screen and paces reconnects, an active session scrolls, and otherwise the
// clock is redrawn once per clock interval. Render failures are logged and
// never stop the loop.
func (a *Arbiter) Step(ctx context.Context, now time.Time) DisplayMode {
	if !a.monitor.Check(ctx, now) {
		if a.mode != Error {
			a.setMode(Error)
			if err := a.renderer.RenderError(); err != nil {
				log.Error().Err(err).Msg("failed to render error screen")
			}
		}
		if _, err := a.monitor.CheckAndMaybeReconnect(now); err != nil {
			log.Warn().Err(err).Msg("reconnect request failed")
		}
		return a.mode
	}

	if a.mode == Error {
		log.Info().Msg("link restored")
		a.monitor.ResetReconnect()
		a.forceClock = true
	}

	if a.engine.Active() {
		a.setMode(Scrolling)
		if _, err := a.engine.Tick(now); err != nil {
			log.Error().Err(err).Msg("failed to render scroll step")
		}
		if !a.engine.Active() {
			a.setMode(Clock)
		}
		return a.mode
	}

	a.setMode(Clock)
	if a.forceClock || a.lastClock.IsZero() || now.Sub(a.lastClock) >= a.clockInterval {
		a.renderClock(now)
	}
	return a.mode
}

func (a *Arbiter) renderClock(now time.Time) {
	a.time.Update()
	a.snapshot = display.ClockSnapshot{
		Hours:        a.time.Hours(),
		Minutes:      a.time.Minutes(),
		ColonVisible: a.colonVisible,
	}
	if err := a.renderer.RenderClock(a.snapshot); err != nil {
		log.Error().Err(err).Stringer("time", a.snapshot).Msg("failed to render clock")
	}
	a.colonVisible = !a.colonVisible
	a.lastClock = now
	a.forceClock = false
}

func (a *Arbiter) setMode(m DisplayMode) {
	if a.mode == m {
		return
	}
	from := a.mode
	a.mode = m
	if from == Scrolling && m == Clock {
		// Bring the clock back as soon as a message ends.
		a.forceClock = true
	}
	log.Debug().Stringer("from", from).Stringer("to", m).Msg("display mode changed")
	if a.onChange != nil {
		a.onChange(from, m)
	}
}

func (a *Arbiter) Mode() DisplayMode {
	return a.mode
}

// Snapshot is the last clock face rendered.
func (a *Arbiter) Snapshot() display.ClockSnapshot {
	return a.snapshot
}
