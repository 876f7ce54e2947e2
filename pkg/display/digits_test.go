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
	"testing"

	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitRendererBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want   error
		name   string
		digit  int
		module int
	}{
		{name: "valid", digit: 7, module: 2},
		{name: "negative digit", digit: -1, module: 0, want: ErrDigitRange},
		{name: "digit too big", digit: 10, module: 0, want: ErrDigitRange},
		{name: "negative module", digit: 1, module: -1, want: ErrModuleRange},
		{name: "module too big", digit: 1, module: 4, want: ErrModuleRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mem := matrix.NewMemory()
			err := NewDigitRenderer(mem).Draw(tt.digit, tt.module)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				assert.True(t, mem.Empty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, largeDigits[tt.digit], mem.Module(tt.module))
		})
	}
}

func TestBrightnessPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultBrightness()
	for h := range 24 {
		night := h >= 22 || h < 6
		assert.Equal(t, night, p.IsNight(h), "hour %d", h)
	}
	assert.Equal(t, uint8(3), p.Level(9))
	assert.Equal(t, uint8(0), p.Level(23))

	day := BrightnessPolicy{Day: 5, Night: 1, NightStart: 1, NightEnd: 4}
	assert.True(t, day.IsNight(2))
	assert.False(t, day.IsNight(4))

	off := BrightnessPolicy{Day: 5, Night: 1, NightStart: 3, NightEnd: 3}
	assert.False(t, off.IsNight(3))
}
