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

// Package matrix holds the drawing primitives for a 32x8 LED matrix made of
// four cascaded 8x8 modules.
//
// Columns are numbered 0..31 from the right edge, so module 0 covers
// columns 0-7 and module 3 covers columns 24-31. Rows are numbered 0..7 from
// the top. A row byte written to a module has its most significant bit on
// the module's leftmost column.
package matrix

import "errors"

const (
	Modules      = 4
	ModuleWidth  = 8
	Width        = Modules * ModuleWidth
	Height       = 8
	MaxIntensity = 15

	// AllModules addresses every module in SetBrightness and SetPower.
	AllModules = -1
)

var (
	ErrModuleRange    = errors.New("module index out of range")
	ErrRowRange       = errors.New("row index out of range")
	ErrIntensityRange = errors.New("intensity out of range")
	ErrClosed         = errors.New("matrix driver closed")
)

// Driver is the set of primitives the display compositor draws with.
// Drawing calls only touch the frame buffer; Flush latches it onto the
// hardware. Brightness and power take effect immediately.
type Driver interface {
	Clear()
	SetPixel(col, row int, on bool)
	// SetChar draws the glyph for r with its leftmost column at col and
	// returns the glyph width in columns.
	SetChar(col int, r rune) int
	SetRow(module, row int, bits byte) error
	Flush() error
	SetBrightness(module int, level uint8) error
	SetPower(module int, on bool) error
	Close() error
}

// CheckModule validates a module index, allowing AllModules when all is set.
func CheckModule(module int, all bool) error {
	if all && module == AllModules {
		return nil
	}
	if module < 0 || module >= Modules {
		return ErrModuleRange
	}
	return nil
}

// ModuleSet expands a module index (or AllModules) into the indices it
// addresses.
func ModuleSet(module int) []int {
	if module == AllModules {
		return []int{0, 1, 2, 3}
	}
	return []int{module}
}
