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

// Package scroll runs scrolling text sessions on the matrix one step at a
// time, so the caller's loop is never blocked by a message.
package scroll

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matrixclock/matrixclock/pkg/matrix"
)

const DefaultDelay = 150 * time.Millisecond

var (
	ErrEmptyText     = errors.New("scroll text is empty")
	ErrInvalidPasses = errors.New("max passes must be at least 1")
)

type Purpose int

const (
	UserMessage Purpose = iota
	IPAnnouncement
)

func (p Purpose) String() string {
	switch p {
	case UserMessage:
		return "message"
	case IPAnnouncement:
		return "ip_announcement"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// Session is one scrolling message. Text holds the drawable runes while
// Message keeps the text as it was submitted.
type Session struct {
	Message         string
	Text            []rune
	Cursor          int
	CompletedPasses int
	MaxPasses       int
	Purpose         Purpose
}

// PassLength is the number of steps in one pass: every character enters
// from the left edge and the last one scrolls fully off.
func (s Session) PassLength() int {
	return len(s.Text) + matrix.Modules
}

// Renderer is the part of the display compositor the engine draws with.
type Renderer interface {
	RenderScrollWindow(text []rune, cursor int) error
	Blank() error
}

// Engine holds at most one session. It is not safe for concurrent use.
type Engine struct {
	r        Renderer
	session  *Session
	lastStep time.Time
	delay    time.Duration
}

func NewEngine(r Renderer, delay time.Duration) *Engine {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Engine{r: r, delay: delay}
}

func (e *Engine) Delay() time.Duration {
	return e.delay
}

func (e *Engine) SetDelay(d time.Duration) {
	if d > 0 {
		e.delay = d
	}
}

// StartScroll replaces any running session. The first step is taken on the
// next Tick.
func (e *Engine) StartScroll(text string, maxPasses int, purpose Purpose) error {
	if maxPasses < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPasses, maxPasses)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	e.session = &Session{
		Message:   text,
		Text:      matrix.Normalize(text),
		MaxPasses: maxPasses,
		Purpose:   purpose,
	}
	e.lastStep = time.Time{}
	return nil
}

// Tick takes one step when the scroll delay has passed since the previous
// one. Calling it more often is harmless. A render error is returned but
// the session still advances.
func (e *Engine) Tick(now time.Time) (bool, error) {
	s := e.session
	if s == nil {
		return false, nil
	}
	if !e.lastStep.IsZero() && now.Sub(e.lastStep) < e.delay {
		return false, nil
	}
	e.lastStep = now

	err := e.r.RenderScrollWindow(s.Text, s.Cursor)
	s.Cursor++
	if s.Cursor >= s.PassLength() {
		s.CompletedPasses++
		s.Cursor = 0
		if s.CompletedPasses >= s.MaxPasses {
			e.session = nil
			err = errors.Join(err, e.r.Blank())
		}
	}
	return true, err
}

// Stop ends any session and blanks the display. It is safe to call with no
// session running.
func (e *Engine) Stop() error {
	e.session = nil
	e.lastStep = time.Time{}
	return e.r.Blank()
}

func (e *Engine) Active() bool {
	return e.session != nil
}

// Session returns a copy of the running session.
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	s := *e.session
	s.Text = append([]rune(nil), e.session.Text...)
	return s, true
}
