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

package matrix

// BrightnessCall records one SetBrightness request.
type BrightnessCall struct {
	Module int
	Level  uint8
}

// Memory is a Driver that keeps everything in memory. It backs the display
// tests and headless runs.
type Memory struct {
	Framebuffer
	flushed    Framebuffer
	Brightness []BrightnessCall
	intensity  [Modules]uint8
	power      [Modules]bool
	Flushes    int
	closed     bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Flush() error {
	if m.closed {
		return ErrClosed
	}
	m.flushed = m.Framebuffer
	m.Flushes++
	return nil
}

func (m *Memory) SetBrightness(module int, level uint8) error {
	if err := CheckModule(module, true); err != nil {
		return err
	}
	if level > MaxIntensity {
		return ErrIntensityRange
	}
	m.Brightness = append(m.Brightness, BrightnessCall{Module: module, Level: level})
	for _, i := range ModuleSet(module) {
		m.intensity[i] = level
	}
	return nil
}

func (m *Memory) SetPower(module int, on bool) error {
	if err := CheckModule(module, true); err != nil {
		return err
	}
	for _, i := range ModuleSet(module) {
		m.power[i] = on
	}
	return nil
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Frame returns the canvas as of the last Flush.
func (m *Memory) Frame() *Framebuffer {
	f := m.flushed
	return &f
}

func (m *Memory) Intensity(module int) uint8 {
	if module < 0 || module >= Modules {
		return 0
	}
	return m.intensity[module]
}

func (m *Memory) Powered(module int) bool {
	if module < 0 || module >= Modules {
		return false
	}
	return m.power[module]
}

// ResetCalls forgets recorded flushes and brightness calls.
func (m *Memory) ResetCalls() {
	m.Brightness = nil
	m.Flushes = 0
}
