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

package scroll

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/matrixclock/matrixclock/pkg/display"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var epoch = time.Date(2026, 1, 2, 9, 5, 0, 0, time.UTC)

func newTestEngine() (*Engine, *matrix.Memory) {
	mem := matrix.NewMemory()
	return NewEngine(display.NewCompositor(mem, display.DefaultBrightness()), DefaultDelay), mem
}

// runToEnd ticks at exactly the scroll delay and returns the steps taken.
func runToEnd(t *testing.T, e *Engine, now time.Time, limit int) int {
	t.Helper()
	steps := 0
	for e.Active() {
		stepped, err := e.Tick(now)
		require.NoError(t, err)
		require.True(t, stepped)
		steps++
		require.LessOrEqual(t, steps, limit, "session did not end")
		now = now.Add(DefaultDelay)
	}
	return steps
}

func TestHelloScrollsThreePasses(t *testing.T) {
	t.Parallel()

	e, mem := newTestEngine()
	require.NoError(t, e.StartScroll("HELLO", 3, UserMessage))

	s, ok := e.Session()
	require.True(t, ok)
	assert.Equal(t, "HELLO", s.Message)
	assert.Equal(t, 9, s.PassLength())

	steps := runToEnd(t, e, epoch, 100)
	assert.Equal(t, 27, steps)
	assert.False(t, e.Active())
	assert.True(t, mem.Frame().Empty())
}

func TestTickRateLimited(t *testing.T) {
	t.Parallel()

	e, mem := newTestEngine()
	require.NoError(t, e.StartScroll("AB", 1, UserMessage))

	stepped, err := e.Tick(epoch)
	require.NoError(t, err)
	assert.True(t, stepped)

	for _, d := range []time.Duration{0, time.Millisecond, DefaultDelay - time.Millisecond} {
		stepped, err = e.Tick(epoch.Add(d))
		require.NoError(t, err)
		assert.False(t, stepped, "stepped after %s", d)
	}
	assert.Equal(t, 1, mem.Flushes)

	stepped, err = e.Tick(epoch.Add(DefaultDelay))
	require.NoError(t, err)
	assert.True(t, stepped)

	s, _ := e.Session()
	assert.Equal(t, 2, s.Cursor)
}

func TestTickWithoutSession(t *testing.T) {
	t.Parallel()

	e, mem := newTestEngine()
	stepped, err := e.Tick(epoch)
	require.NoError(t, err)
	assert.False(t, stepped)
	assert.Zero(t, mem.Flushes)
}

func TestCursorAndPasses(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.StartScroll("HI", 2, UserMessage))

	now := epoch
	var cursors []int
	var passes []int
	for e.Active() {
		_, err := e.Tick(now)
		require.NoError(t, err)
		if s, ok := e.Session(); ok {
			cursors = append(cursors, s.Cursor)
			passes = append(passes, s.CompletedPasses)
		}
		now = now.Add(DefaultDelay)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 0, 1, 2, 3, 4, 5}, cursors)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}, passes)
}

func TestStartScrollReplaces(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.StartScroll("FIRST", 3, UserMessage))
	_, err := e.Tick(epoch)
	require.NoError(t, err)

	require.NoError(t, e.StartScroll("SECOND", 1, IPAnnouncement))
	s, ok := e.Session()
	require.True(t, ok)
	assert.Equal(t, "SECOND", s.Message)
	assert.Zero(t, s.Cursor)
	assert.Equal(t, IPAnnouncement, s.Purpose)

	// The replacement steps immediately even though the delay has not passed.
	stepped, err := e.Tick(epoch.Add(time.Millisecond))
	require.NoError(t, err)
	assert.True(t, stepped)
}

func TestPassLengthKeepsSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "doubled space", text: "A  B", want: "A  B"},
		{name: "leading and trailing", text: " HI ", want: " HI "},
		{name: "tab", text: "A\tB", want: "A B"},
		{name: "accent", text: "SÃO", want: "SAO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, _ := newTestEngine()
			require.NoError(t, e.StartScroll(tt.text, 1, UserMessage))
			s, ok := e.Session()
			require.True(t, ok)
			assert.Equal(t, tt.want, string(s.Text))
			assert.Equal(t, tt.text, s.Message)

			want := utf8.RuneCountInString(tt.text) + matrix.Modules
			assert.Equal(t, want, s.PassLength())
			assert.Equal(t, want, runToEnd(t, e, epoch, 100))
		})
	}
}

func TestStartScrollValidation(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.StartScroll("KEEP", 3, UserMessage))

	require.ErrorIs(t, e.StartScroll("", 3, UserMessage), ErrEmptyText)
	require.ErrorIs(t, e.StartScroll("  \t", 3, UserMessage), ErrEmptyText)
	require.ErrorIs(t, e.StartScroll("X", 0, UserMessage), ErrInvalidPasses)

	s, ok := e.Session()
	require.True(t, ok)
	assert.Equal(t, "KEEP", s.Message)
}

func TestStopIdempotent(t *testing.T) {
	t.Parallel()

	e, mem := newTestEngine()
	require.NoError(t, e.Stop())
	assert.True(t, mem.Frame().Empty())

	require.NoError(t, e.StartScroll("HELLO", 3, UserMessage))
	_, err := e.Tick(epoch)
	require.NoError(t, err)
	assert.False(t, mem.Frame().Empty())

	require.NoError(t, e.Stop())
	require.NoError(t, e.Stop())
	assert.False(t, e.Active())
	assert.True(t, mem.Frame().Empty())
}

func TestSessionIsCopy(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.StartScroll("ABC", 1, UserMessage))
	s, _ := e.Session()
	s.Text[0] = 'Z'
	s.Cursor = 99

	again, _ := e.Session()
	assert.Equal(t, "ABC", string(again.Text))
	assert.Zero(t, again.Cursor)
}

type failingRenderer struct {
	renders int
}

func (f *failingRenderer) RenderScrollWindow([]rune, int) error {
	f.renders++
	return errors.New("spi write failed")
}

func (f *failingRenderer) Blank() error { return nil }

func TestRenderErrorStillAdvances(t *testing.T) {
	t.Parallel()

	r := &failingRenderer{}
	e := NewEngine(r, 0)
	assert.Equal(t, DefaultDelay, e.Delay())
	require.NoError(t, e.StartScroll("A", 1, UserMessage))

	now := epoch
	for e.Active() {
		stepped, err := e.Tick(now)
		require.Error(t, err)
		require.True(t, stepped)
		now = now.Add(DefaultDelay)
	}
	assert.Equal(t, 1+matrix.Modules, r.renders)
}

func TestPropertyPassCount(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[A-Za-z0-9 !?]{1,40}`).Draw(t, "text")
		passes := rapid.IntRange(1, 5).Draw(t, "passes")
		jitter := rapid.IntRange(0, 100).Draw(t, "jitter")

		mem := matrix.NewMemory()
		e := NewEngine(display.NewCompositor(mem, display.DefaultBrightness()), DefaultDelay)
		if err := e.StartScroll(text, passes, UserMessage); err != nil {
			// Whitespace-only text is rejected.
			return
		}
		length := utf8.RuneCountInString(text)

		steps := 0
		now := epoch
		for e.Active() {
			stepped, err := e.Tick(now)
			if err != nil {
				t.Fatalf("tick: %v", err)
			}
			if stepped {
				steps++
			}
			// Ticking faster than the delay must not change the step count.
			now = now.Add(DefaultDelay/2 + time.Duration(jitter)*time.Millisecond)
			if steps > passes*(length+matrix.Modules) {
				t.Fatalf("too many steps: %d", steps)
			}
		}
		if steps != passes*(length+matrix.Modules) {
			t.Fatalf("got %d steps, want %d", steps, passes*(length+matrix.Modules))
		}
		if !mem.Frame().Empty() {
			t.Fatalf("display not cleared after session")
		}
	})
}
