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

// BrightnessPolicy picks the matrix intensity for an hour of the day.
// Night spans [NightStart, NightEnd) and wraps midnight when NightStart is
// after NightEnd. Equal bounds disable night mode.
type BrightnessPolicy struct {
	Day        uint8
	Night      uint8
	NightStart int
	NightEnd   int
}

func DefaultBrightness() BrightnessPolicy {
	return BrightnessPolicy{
		Day:        3,
		Night:      0,
		NightStart: 22,
		NightEnd:   6,
	}
}

func (p BrightnessPolicy) IsNight(hours int) bool {
	switch {
	case p.NightStart == p.NightEnd:
		return false
	case p.NightStart > p.NightEnd:
		return hours >= p.NightStart || hours < p.NightEnd
	default:
		return hours >= p.NightStart && hours < p.NightEnd
	}
}

func (p BrightnessPolicy) Level(hours int) uint8 {
	if p.IsNight(hours) {
		return p.Night
	}
	return p.Day
}
