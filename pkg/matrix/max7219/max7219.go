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

// Package max7219 drives a chain of MAX7219 LED matrix controllers over SPI
// using periph.io.
package max7219

import (
	"errors"
	"fmt"

	"github.com/matrixclock/matrixclock/pkg/matrix"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	regNoop        = 0x00
	regDigit0      = 0x01
	regDecodeMode  = 0x09
	regIntensity   = 0x0A
	regScanLimit   = 0x0B
	regShutdown    = 0x0C
	regDisplayTest = 0x0F

	// StartupIntensity is applied to every module on init.
	StartupIntensity = 1

	maxFrequency = 10 * physic.MegaHertz
)

// Dev is a chain of matrix.Modules MAX7219 chips wired FC16 style: the
// first chip on the data line is module 0 on the right edge.
type Dev struct {
	matrix.Framebuffer
	c      conn.Conn
	halted bool
}

// NewSPI connects to p in SPI mode 0 and initialises every module.
func NewSPI(p spi.Port) (*Dev, error) {
	c, err := p.Connect(maxFrequency, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("max7219: failed to connect: %w", err)
	}
	return New(c)
}

// New initialises the chain on an established connection: no decode, all
// eight rows scanned, display test off, powered on at StartupIntensity and
// blanked.
func New(c conn.Conn) (*Dev, error) {
	d := &Dev{c: c}
	seq := []struct {
		reg, val byte
	}{
		{regScanLimit, 0x07},
		{regDecodeMode, 0x00},
		{regDisplayTest, 0x00},
		{regIntensity, StartupIntensity},
		{regShutdown, 0x01},
	}
	for _, cmd := range seq {
		if err := d.writeAll(cmd.reg, cmd.val); err != nil {
			return nil, fmt.Errorf("max7219: init register 0x%02x: %w", cmd.reg, err)
		}
	}
	if err := d.Flush(); err != nil {
		return nil, fmt.Errorf("max7219: blank display: %w", err)
	}
	return d, nil
}

// Flush latches the frame buffer, one transaction per row across the
// chain.
func (d *Dev) Flush() error {
	if d.halted {
		return matrix.ErrClosed
	}
	for row := range matrix.Height {
		vals := make([]byte, matrix.Modules)
		for m := range matrix.Modules {
			vals[m] = d.Row(m, row)
		}
		if err := d.write(regDigit0+byte(row), vals); err != nil {
			return fmt.Errorf("max7219: flush row %d: %w", row, err)
		}
	}
	return nil
}

func (d *Dev) SetBrightness(module int, level uint8) error {
	if level > matrix.MaxIntensity {
		return matrix.ErrIntensityRange
	}
	return d.writeModules(module, regIntensity, level)
}

func (d *Dev) SetPower(module int, on bool) error {
	var v byte
	if on {
		v = 0x01
	}
	return d.writeModules(module, regShutdown, v)
}

// Close blanks and shuts down every module. Further calls return
// matrix.ErrClosed.
func (d *Dev) Close() error {
	if d.halted {
		return nil
	}
	d.Clear()
	err := errors.Join(d.Flush(), d.writeAll(regShutdown, 0x00))
	d.halted = true
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("max7219{%s}", d.c)
}

func (d *Dev) writeAll(reg, val byte) error {
	return d.writeModules(matrix.AllModules, reg, val)
}

// writeModules sets reg on the addressed modules and sends no-ops to the
// others.
func (d *Dev) writeModules(module int, reg, val byte) error {
	if d.halted {
		return matrix.ErrClosed
	}
	if err := matrix.CheckModule(module, true); err != nil {
		return err
	}
	regs := make([]byte, matrix.Modules)
	vals := make([]byte, matrix.Modules)
	for m := range regs {
		regs[m] = regNoop
	}
	for _, m := range matrix.ModuleSet(module) {
		regs[m] = reg
		vals[m] = val
	}
	return d.c.Tx(frame(regs, vals), nil)
}

func (d *Dev) write(reg byte, vals []byte) error {
	regs := make([]byte, matrix.Modules)
	for m := range regs {
		regs[m] = reg
	}
	return d.c.Tx(frame(regs, vals), nil)
}

// frame builds one chain transaction. Bytes shift through the chain, so
// the first pair clocked out ends up in the last module.
func frame(regs, vals []byte) []byte {
	w := make([]byte, 0, 2*len(regs))
	for m := len(regs) - 1; m >= 0; m-- {
		w = append(w, regs[m], vals[m])
	}
	return w
}

var _ matrix.Driver = (*Dev)(nil)
