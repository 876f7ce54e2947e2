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

// Package termsim renders the LED matrix in a terminal with tcell, for
// running the clock on a development machine.
package termsim

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/matrixclock/matrixclock/pkg/matrix"
)

const (
	cellWidth = 2
	originX   = 1
	originY   = 1
	ledRune   = '●'
)

// Screen draws the matrix inside a box, two terminal cells per LED.
type Screen struct {
	matrix.Framebuffer
	screen    tcell.Screen
	quit      chan struct{}
	quitOnce  sync.Once
	intensity [matrix.Modules]uint8
	power     [matrix.Modules]bool
	closed    bool
}

// Open takes over the controlling terminal.
func Open() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("termsim: new screen: %w", err)
	}
	return New(s)
}

// New initialises s and starts watching it for quit keys (q, Esc, Ctrl-C).
func New(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("termsim: init screen: %w", err)
	}
	d := &Screen{
		screen: s,
		quit:   make(chan struct{}),
	}
	for m := range matrix.Modules {
		d.intensity[m] = 1
		d.power[m] = true
	}
	s.HideCursor()
	s.Clear()
	go d.pollEvents()
	if err := d.Flush(); err != nil {
		return nil, err
	}
	return d, nil
}

// Quit is closed when the user asks to leave the simulator.
func (d *Screen) Quit() <-chan struct{} {
	return d.quit
}

func (d *Screen) Flush() error {
	if d.closed {
		return matrix.ErrClosed
	}
	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	d.drawBox(border)
	for col := matrix.Width - 1; col >= 0; col-- {
		x := originX + (matrix.Width-1-col)*cellWidth
		m := col / matrix.ModuleWidth
		for row := range matrix.Height {
			r, style := ' ', tcell.StyleDefault
			if d.power[m] && d.Pixel(col, row) {
				r = ledRune
				style = style.Foreground(ledColor(d.intensity[m]))
			}
			d.screen.SetContent(x, originY+row, r, nil, style)
			d.screen.SetContent(x+1, originY+row, ' ', nil, tcell.StyleDefault)
		}
	}
	d.screen.Show()
	return nil
}

func (d *Screen) SetBrightness(module int, level uint8) error {
	if err := matrix.CheckModule(module, true); err != nil {
		return err
	}
	if level > matrix.MaxIntensity {
		return matrix.ErrIntensityRange
	}
	for _, m := range matrix.ModuleSet(module) {
		d.intensity[m] = level
	}
	return nil
}

func (d *Screen) SetPower(module int, on bool) error {
	if err := matrix.CheckModule(module, true); err != nil {
		return err
	}
	for _, m := range matrix.ModuleSet(module) {
		d.power[m] = on
	}
	return nil
}

// Close restores the terminal.
func (d *Screen) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.screen.Fini()
	d.stop()
	return nil
}

func (d *Screen) stop() {
	d.quitOnce.Do(func() { close(d.quit) })
}

func (d *Screen) pollEvents() {
	for {
		ev := d.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// Fini was called.
			d.stop()
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				d.stop()
				return
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

func (d *Screen) drawBox(style tcell.Style) {
	w := matrix.Width*cellWidth + 1
	h := matrix.Height + 1
	for x := 1; x < w; x++ {
		d.screen.SetContent(originX-1+x, originY-1, tcell.RuneHLine, nil, style)
		d.screen.SetContent(originX-1+x, originY+matrix.Height, tcell.RuneHLine, nil, style)
	}
	for y := 1; y < h; y++ {
		d.screen.SetContent(originX-1, originY-1+y, tcell.RuneVLine, nil, style)
		d.screen.SetContent(originX-1+w, originY-1+y, tcell.RuneVLine, nil, style)
	}
	d.screen.SetContent(originX-1, originY-1, tcell.RuneULCorner, nil, style)
	d.screen.SetContent(originX-1+w, originY-1, tcell.RuneURCorner, nil, style)
	d.screen.SetContent(originX-1, originY+matrix.Height, tcell.RuneLLCorner, nil, style)
	d.screen.SetContent(originX-1+w, originY+matrix.Height, tcell.RuneLRCorner, nil, style)
}

// ledColor maps a MAX7219 intensity to a shade of red.
func ledColor(level uint8) tcell.Color {
	const floor = 80
	v := floor + int32(level)*(255-floor)/matrix.MaxIntensity
	return tcell.NewRGBColor(v, 0, 0)
}

var _ matrix.Driver = (*Screen)(nil)
