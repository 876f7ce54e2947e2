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

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/api/notifications"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/display"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/matrixclock/matrixclock/pkg/service/connectivity"
	"github.com/matrixclock/matrixclock/pkg/service/mode"
	"github.com/matrixclock/matrixclock/pkg/service/scroll"
	"github.com/matrixclock/matrixclock/pkg/timesource"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickInterval = 10 * time.Millisecond
	AnnouncementPasses  = 1
	commandQueueSize    = 16
)

var ErrAlreadyRunning = errors.New("display controller already running")

type command func()

// Controller owns the display. Run executes the control loop on the
// calling goroutine; every other method hands work to that loop and waits
// for the result, so engine, arbiter and driver are only ever touched from
// one goroutine.
type Controller struct {
	clock         clockwork.Clock
	cfg           *config.Instance
	compositor    *display.Compositor
	engine        *scroll.Engine
	monitor       *connectivity.Monitor
	arbiter       *mode.Arbiter
	notifications chan<- models.Notification
	commands      chan command
	started       chan struct{}
	done          chan struct{}
	tickInterval  time.Duration
	connected     bool
}

type ControllerOption func(*Controller)

func WithClock(c clockwork.Clock) ControllerOption {
	return func(ctrl *Controller) { ctrl.clock = c }
}

func WithTickInterval(d time.Duration) ControllerOption {
	return func(ctrl *Controller) { ctrl.tickInterval = d }
}

func NewController(
	cfg *config.Instance,
	drv matrix.Driver,
	link connectivity.Link,
	ts timesource.Source,
	ns chan<- models.Notification,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		clock:         clockwork.NewRealClock(),
		cfg:           cfg,
		notifications: ns,
		commands:      make(chan command, commandQueueSize),
		started:       make(chan struct{}),
		done:          make(chan struct{}),
		tickInterval:  DefaultTickInterval,
		connected:     true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.compositor = display.NewCompositor(drv, brightnessPolicy(cfg))
	c.engine = scroll.NewEngine(c.compositor, cfg.ScrollDelay())
	c.monitor = connectivity.NewMonitor(link,
		connectivity.WithReconnectInterval(cfg.ReconnectInterval()),
	)
	c.arbiter = mode.New(c.engine, c.monitor, c.compositor, ts,
		mode.WithChangeFunc(c.modeChanged),
	)
	return c
}

func brightnessPolicy(cfg *config.Instance) display.BrightnessPolicy {
	start, end := cfg.NightHours()
	return display.BrightnessPolicy{
		Day:        cfg.DayBrightness(),
		Night:      cfg.NightBrightness(),
		NightStart: start,
		NightEnd:   end,
	}
}

// Announce queues a single pass of text as an IP announcement. It must be
// called before Run.
func (c *Controller) Announce(text string) error {
	select {
	case <-c.started:
		return ErrAlreadyRunning
	default:
	}
	if err := c.engine.StartScroll(text, AnnouncementPasses, scroll.IPAnnouncement); err != nil {
		return fmt.Errorf("failed to queue announcement: %w", err)
	}
	log.Info().Str("text", text).Msg("queued ip announcement")
	return nil
}

// Run drives the display until ctx is cancelled. It can only be called once.
func (c *Controller) Run(ctx context.Context) error {
	select {
	case <-c.started:
		return ErrAlreadyRunning
	default:
		close(c.started)
	}
	defer close(c.done)

	ticker := c.clock.NewTicker(c.tickInterval)
	defer ticker.Stop()
	defer c.monitor.Wait()

	if s, ok := c.engine.Session(); ok {
		c.messageStarted(s)
	}
	// The first frame reflects the real link state; later polls run in the
	// background.
	c.monitor.Poll(ctx, c.clock.Now())
	c.step(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("display controller stopping")
			return nil
		case cmd := <-c.commands:
			cmd()
		case <-ticker.Chan():
			c.step(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) step(ctx context.Context) {
	before, wasActive := c.engine.Session()

	c.arbiter.Step(ctx, c.clock.Now())

	if wasActive && !c.engine.Active() {
		notifications.MessageFinished(c.notifications, messageEvent(before))
	}
	if connected := c.monitor.State().Connected; connected != c.connected {
		c.connected = connected
		notifications.Connectivity(c.notifications, connected)
	}
}

func (c *Controller) modeChanged(from, to mode.DisplayMode) {
	notifications.ModeChanged(c.notifications, models.ModeChangedParams{
		From: from.String(),
		To:   to.String(),
	})
}

func (c *Controller) messageStarted(s scroll.Session) {
	notifications.MessageStarted(c.notifications, messageEvent(s))
}

func messageEvent(s scroll.Session) models.MessageEventParams {
	return models.MessageEventParams{
		Message: s.Message,
		Purpose: s.Purpose.String(),
		Passes:  s.MaxPasses,
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (c *Controller) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-c.started:
	default:
		return models.ErrNotRunning
	}

	select {
	case c.commands <- cmd:
	case <-c.done:
		return models.ErrNotRunning
	case <-ctx.Done():
		return fmt.Errorf("failed to queue display command: %w", ctx.Err())
	}

	select {
	case <-finished:
		return nil
	case <-c.done:
		select {
		case <-finished:
			return nil
		default:
			return models.ErrNotRunning
		}
	case <-ctx.Done():
		return fmt.Errorf("display command did not complete: %w", ctx.Err())
	}
}

// SubmitMessage replaces whatever is scrolling with text. A rejected message
// leaves the current session alone.
func (c *Controller) SubmitMessage(ctx context.Context, text string) (models.MessageResponse, error) {
	var resp models.MessageResponse
	var submitErr error
	err := c.do(ctx, func() {
		resp, submitErr = c.submit(text)
	})
	if err != nil {
		return models.MessageResponse{}, err
	}
	return resp, submitErr
}

func (c *Controller) submit(text string) (models.MessageResponse, error) {
	if strings.TrimSpace(text) == "" {
		return models.MessageResponse{}, fmt.Errorf("%w: %w", models.ErrInvalidMessage, scroll.ErrEmptyText)
	}
	if maxLen := c.cfg.MaxMessageLength(); utf8.RuneCountInString(text) > maxLen {
		return models.MessageResponse{}, fmt.Errorf(
			"%w: message longer than %d characters", models.ErrInvalidMessage, maxLen)
	}

	passes := c.cfg.MessagePasses()
	wasActive := c.engine.Active()
	if err := c.engine.StartScroll(text, passes, scroll.UserMessage); err != nil {
		return models.MessageResponse{}, fmt.Errorf("%w: %w", models.ErrInvalidMessage, err)
	}
	log.Info().Str("message", text).Int("passes", passes).Msg("scrolling message")

	if wasActive {
		notifications.MessageStopped(c.notifications)
	}
	s, _ := c.engine.Session()
	c.messageStarted(s)

	return models.MessageResponse{
		Status:  models.StatusSuccess,
		Message: text,
		Scrolls: strconv.Itoa(passes),
	}, nil
}

// StopScroll ends any running session. Stopping with nothing on screen is
// not an error.
func (c *Controller) StopScroll(ctx context.Context) error {
	return c.do(ctx, c.stop)
}

func (c *Controller) stop() {
	wasActive := c.engine.Active()
	if err := c.engine.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to blank display")
	}
	if c.arbiter.Mode() == mode.Error {
		if err := c.compositor.RenderError(); err != nil {
			log.Error().Err(err).Msg("failed to render error screen")
		}
	}
	if wasActive {
		log.Info().Msg("scrolling stopped")
		notifications.MessageStopped(c.notifications)
	}
}

func (c *Controller) QueryStatus(ctx context.Context) (models.StatusResponse, error) {
	var resp models.StatusResponse
	err := c.do(ctx, func() {
		if s, ok := c.engine.Session(); ok {
			resp = models.StatusResponse{Scrolling: true, Message: s.Message}
		}
	})
	return resp, err
}

// Info reports the display side of /api/info. Version, address and uptime
// are filled in by the caller.
func (c *Controller) Info(ctx context.Context) (models.InfoResponse, error) {
	var resp models.InfoResponse
	err := c.do(ctx, func() {
		resp.Mode = c.arbiter.Mode().String()
		resp.Connected = c.monitor.State().Connected
	})
	return resp, err
}

// Reload applies display, clock and network settings from the config file.
func (c *Controller) Reload(ctx context.Context) error {
	return c.do(ctx, func() {
		c.compositor.SetBrightnessPolicy(brightnessPolicy(c.cfg))
		c.engine.SetDelay(c.cfg.ScrollDelay())
		c.monitor.SetReconnectInterval(c.cfg.ReconnectInterval())
		log.Info().Msg("display settings reloaded")
	})
}
