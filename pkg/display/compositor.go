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

// Package display composes clock faces, scrolling text and status codes on
// the LED matrix.
package display

import (
	"errors"
	"fmt"

	"github.com/matrixclock/matrixclock/pkg/matrix"
)

const (
	// WindowChars is how many characters fit on the matrix at once.
	WindowChars = (matrix.Width + matrix.ModuleWidth - 1) / matrix.ModuleWidth

	// MaxStaticText is the longest status code RenderStaticText accepts.
	MaxStaticText = WindowChars

	textStart = matrix.Width - 1
	charPitch = matrix.ModuleWidth

	// Left column of the first "ERR" glyph.
	errorStart = 24

	TextError      = "ERR"
	TextSetup      = "CONF"
	TextConnecting = "WIFI"
)

var (
	ErrTimeRange   = errors.New("time out of range")
	ErrTextTooLong = errors.New("static text too long")
)

// colonPixels are the two 2x2 dots between the hour and minute digits.
var colonPixels = [][2]int{
	{15, 2}, {16, 2}, {15, 3}, {16, 3},
	{15, 5}, {16, 5}, {15, 6}, {16, 6},
}

// ClockSnapshot is one clock face.
type ClockSnapshot struct {
	Hours        int
	Minutes      int
	ColonVisible bool
}

func (s ClockSnapshot) String() string {
	sep := " "
	if s.ColonVisible {
		sep = ":"
	}
	return fmt.Sprintf("%02d%s%02d", s.Hours, sep, s.Minutes)
}

// Compositor owns the whole canvas. Every render clears the frame buffer,
// draws and flushes, so no call depends on what was drawn before.
type Compositor struct {
	drv    matrix.Driver
	digits DigitRenderer
	policy BrightnessPolicy
}

func NewCompositor(drv matrix.Driver, policy BrightnessPolicy) *Compositor {
	return &Compositor{
		drv:    drv,
		digits: NewDigitRenderer(drv),
		policy: policy,
	}
}

func (c *Compositor) SetBrightnessPolicy(p BrightnessPolicy) {
	c.policy = p
}

func (c *Compositor) BrightnessPolicy() BrightnessPolicy {
	return c.policy
}

// RenderClock draws HH:MM with minutes ones in module 0 through hours tens
// in module 3, and sets the brightness for the hour on all modules.
func (c *Compositor) RenderClock(s ClockSnapshot) error {
	if s.Hours < 0 || s.Hours > 23 || s.Minutes < 0 || s.Minutes > 59 {
		return fmt.Errorf("%w: %d:%d", ErrTimeRange, s.Hours, s.Minutes)
	}

	c.drv.Clear()
	digits := [matrix.Modules]int{
		s.Minutes % 10,
		s.Minutes / 10,
		s.Hours % 10,
		s.Hours / 10,
	}
	for module, d := range digits {
		if err := c.digits.Draw(d, module); err != nil {
			return err
		}
	}
	if s.ColonVisible {
		for _, p := range colonPixels {
			c.drv.SetPixel(p[0], p[1], true)
		}
	}

	level := c.policy.Level(s.Hours)
	if err := c.drv.SetBrightness(matrix.AllModules, level); err != nil {
		return fmt.Errorf("failed to set brightness %d: %w", level, err)
	}
	return c.flush()
}

// RenderScrollWindow draws up to WindowChars characters of text starting at
// cursor, the first one against the left edge. A cursor past the end of the
// text draws an empty frame.
func (c *Compositor) RenderScrollWindow(text []rune, cursor int) error {
	c.drv.Clear()
	if cursor >= 0 {
		for i := 0; i < WindowChars && cursor+i < len(text); i++ {
			c.drv.SetChar(textStart-i*charPitch, text[cursor+i])
		}
	}
	return c.flush()
}

// RenderStaticText draws a short code, one character per module.
func (c *Compositor) RenderStaticText(code string) error {
	runes := []rune(code)
	if len(runes) > MaxStaticText {
		return fmt.Errorf("%w: %q", ErrTextTooLong, code)
	}
	return c.renderAt(textStart, runes)
}

func (c *Compositor) RenderError() error {
	return c.renderAt(errorStart, []rune(TextError))
}

func (c *Compositor) RenderSetup() error {
	return c.RenderStaticText(TextSetup)
}

func (c *Compositor) RenderConnecting() error {
	return c.RenderStaticText(TextConnecting)
}

// Blank clears the whole canvas.
func (c *Compositor) Blank() error {
	c.drv.Clear()
	return c.flush()
}

func (c *Compositor) renderAt(start int, text []rune) error {
	c.drv.Clear()
	for i, r := range text {
		c.drv.SetChar(start-i*charPitch, r)
	}
	return c.flush()
}

func (c *Compositor) flush() error {
	if err := c.drv.Flush(); err != nil {
		return fmt.Errorf("failed to flush matrix: %w", err)
	}
	return nil
}
