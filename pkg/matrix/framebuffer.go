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

// Framebuffer is the in-memory canvas shared by the drivers. It is not safe
// for concurrent use; the controller loop is its only writer.
type Framebuffer struct {
	rows [Modules][Height]byte
}

func (f *Framebuffer) Clear() {
	f.rows = [Modules][Height]byte{}
}

// SetPixel ignores coordinates outside the canvas.
func (f *Framebuffer) SetPixel(col, row int, on bool) {
	if col < 0 || col >= Width || row < 0 || row >= Height {
		return
	}
	m := col / ModuleWidth
	bit := byte(1) << (col % ModuleWidth)
	if on {
		f.rows[m][row] |= bit
	} else {
		f.rows[m][row] &^= bit
	}
}

// Pixel reports whether the pixel at col, row is lit.
func (f *Framebuffer) Pixel(col, row int) bool {
	if col < 0 || col >= Width || row < 0 || row >= Height {
		return false
	}
	return f.rows[col/ModuleWidth][row]&(1<<(col%ModuleWidth)) != 0
}

// SetChar draws r with its leftmost glyph column at col, moving right
// (towards column 0) for each following glyph column. Columns that fall off
// the canvas are dropped.
func (f *Framebuffer) SetChar(col int, r rune) int {
	g := Glyph(r)
	for i, bits := range g {
		c := col - i
		for row := range Height {
			if bits&(1<<row) != 0 {
				f.SetPixel(c, row, true)
			}
		}
	}
	return len(g)
}

func (f *Framebuffer) SetRow(module, row int, bits byte) error {
	if err := CheckModule(module, false); err != nil {
		return err
	}
	if row < 0 || row >= Height {
		return ErrRowRange
	}
	f.rows[module][row] = bits
	return nil
}

// Row returns the row byte of a module, or 0 when out of range.
func (f *Framebuffer) Row(module, row int) byte {
	if module < 0 || module >= Modules || row < 0 || row >= Height {
		return 0
	}
	return f.rows[module][row]
}

// Module returns a copy of the 8 rows of a module.
func (f *Framebuffer) Module(module int) [Height]byte {
	if module < 0 || module >= Modules {
		return [Height]byte{}
	}
	return f.rows[module]
}

// Empty reports whether no pixel is lit.
func (f *Framebuffer) Empty() bool {
	return f.rows == [Modules][Height]byte{}
}

// String renders the canvas as 8 lines of '#' and '.', left edge first.
func (f *Framebuffer) String() string {
	buf := make([]byte, 0, (Width+1)*Height)
	for row := range Height {
		for col := Width - 1; col >= 0; col-- {
			if f.Pixel(col, row) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
