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

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain ascii", in: "HELLO", want: "HELLO"},
		{name: "accents stripped", in: "Olá, São Paulo", want: "Ola, Sao Paulo"},
		{name: "whitespace kept per rune", in: "  a\t\tb\nc  ", want: "  a  b c  "},
		{name: "unsupported rune", in: "1€", want: "1?"},
		{name: "only whitespace", in: " \n\t", want: "   "},
		{name: "lone combining mark", in: "a\u0301", want: "a?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(Normalize(tt.in)))
		})
	}
}

func TestGlyphFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Glyph('?'), Glyph('\x01'))
	assert.Equal(t, Glyph('?'), Glyph('é'))
	assert.Len(t, Glyph('A'), glyphWidth)
}

func TestPropertyNormalizeDrawable(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "text")
		out := Normalize(s)
		if len(out) != utf8.RuneCountInString(s) {
			t.Fatalf("got %d runes from %q, want %d", len(out), s, utf8.RuneCountInString(s))
		}
		for _, r := range out {
			if r < firstGlyph || r > lastGlyph {
				t.Fatalf("undrawable rune %q from %q", r, s)
			}
		}
	})
}
