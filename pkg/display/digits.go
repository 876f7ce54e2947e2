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

package display

import (
	"errors"
	"fmt"

	"github.com/matrixclock/matrixclock/pkg/matrix"
)

var (
	ErrDigitRange  = errors.New("digit out of range")
	ErrModuleRange = matrix.ErrModuleRange
)

// largeDigits are full-module 8x8 numerals, one byte per row from the top,
// most significant bit on the left.
var largeDigits = [10][matrix.Height]byte{
	{0x3C, 0x7E, 0xC6, 0xC6, 0xC6, 0xC6, 0x7E, 0x3C},
	{0x18, 0x38, 0x78, 0x18, 0x18, 0x18, 0x7E, 0x7E},
	{0x7C, 0xFE, 0xC6, 0x0E, 0x3C, 0x78, 0xFE, 0xFE},
	{0x7C, 0xFE, 0xC6, 0x3C, 0x06, 0xC6, 0xFE, 0x7C},
	{0x1E, 0x3E, 0x6E, 0xCE, 0xFE, 0x0E, 0x0E, 0x0E},
	{0xFE, 0xFE, 0xC0, 0xFC, 0x06, 0xC6, 0xFE, 0x7C},
	{0x7C, 0xFE, 0xC0, 0xFC, 0xC6, 0xC6, 0xFE, 0x7C},
	{0xFE, 0xFE, 0x06, 0x0C, 0x18, 0x30, 0x60, 0xC0},
	{0x7C, 0xFE, 0xC6, 0x7C, 0xC6, 0xC6, 0xFE, 0x7C},
	{0x7C, 0xFE, 0xC6, 0xC6, 0x7E, 0x06, 0xFE, 0x7C},
}

// DigitBitmap returns the rows of a large digit.
func DigitBitmap(digit int) ([matrix.Height]byte, error) {
	if digit < 0 || digit > 9 {
		return [matrix.Height]byte{}, fmt.Errorf("%w: %d", ErrDigitRange, digit)
	}
	return largeDigits[digit], nil
}

// DigitRenderer writes large digits into whole modules.
type DigitRenderer struct {
	drv matrix.Driver
}

func NewDigitRenderer(drv matrix.Driver) DigitRenderer {
	return DigitRenderer{drv: drv}
}

// Draw writes digit into module, replacing all 8 of its rows.
func (r DigitRenderer) Draw(digit, module int) error {
	bitmap, err := DigitBitmap(digit)
	if err != nil {
		return err
	}
	if module < 0 || module >= matrix.Modules {
		return fmt.Errorf("%w: %d", ErrModuleRange, module)
	}
	for row, bits := range bitmap {
		if err := r.drv.SetRow(module, row, bits); err != nil {
			return fmt.Errorf("failed to draw digit %d on module %d: %w", digit, module, err)
		}
	}
	return nil
}
