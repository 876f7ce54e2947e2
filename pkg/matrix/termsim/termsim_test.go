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

package termsim

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	sim.SetSize(80, 12)
	d, err := New(sim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, sim
}

func cell(sim tcell.SimulationScreen, x, y int) rune {
	cells, width, _ := sim.GetContents()
	idx := y*width + x
	if idx < len(cells) && len(cells[idx].Runes) > 0 {
		return cells[idx].Runes[0]
	}
	return ' '
}

func TestFlushDrawsLEDs(t *testing.T) {
	t.Parallel()

	d, sim := newSim(t)
	d.SetPixel(matrix.Width-1, 0, true)
	d.SetPixel(0, matrix.Height-1, true)
	require.NoError(t, d.Flush())

	assert.Equal(t, ledRune, cell(sim, originX, originY))
	assert.Equal(t, ledRune, cell(sim, originX+(matrix.Width-1)*cellWidth, originY+matrix.Height-1))
	assert.Equal(t, ' ', cell(sim, originX+cellWidth, originY))
	assert.Equal(t, tcell.RuneULCorner, cell(sim, 0, 0))
}

func TestPowerOffHidesModule(t *testing.T) {
	t.Parallel()

	d, sim := newSim(t)
	d.SetPixel(0, 0, true)
	require.NoError(t, d.SetPower(0, false))
	require.NoError(t, d.Flush())
	assert.Equal(t, ' ', cell(sim, originX+(matrix.Width-1)*cellWidth, originY))

	require.ErrorIs(t, d.SetPower(7, true), matrix.ErrModuleRange)
}

func TestBrightnessRange(t *testing.T) {
	t.Parallel()

	d, _ := newSim(t)
	require.NoError(t, d.SetBrightness(matrix.AllModules, 0))
	require.ErrorIs(t, d.SetBrightness(0, 20), matrix.ErrIntensityRange)
	assert.NotEqual(t, ledColor(0), ledColor(matrix.MaxIntensity))
}

func TestQuitKey(t *testing.T) {
	t.Parallel()

	d, sim := newSim(t)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-d.Quit():
	case <-time.After(2 * time.Second):
		t.Fatal("quit key was not handled")
	}
}

func TestCloseStopsDriver(t *testing.T) {
	t.Parallel()

	d, _ := newSim(t)
	require.NoError(t, d.Close())
	require.ErrorIs(t, d.Flush(), matrix.ErrClosed)

	select {
	case <-d.Quit():
	case <-time.After(2 * time.Second):
		t.Fatal("quit channel not closed after Close")
	}
}
