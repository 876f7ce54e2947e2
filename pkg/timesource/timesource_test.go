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

package timesource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestUTCOffsetApplied(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(epoch)
	n := NewNTP("pool.ntp.org", WithClock(clock), WithUTCOffset(-3*time.Hour))

	assert.Equal(t, 9, n.Hours())
	assert.Equal(t, 0, n.Minutes())

	n.SetUTCOffset(5*time.Hour + 30*time.Minute)
	assert.Equal(t, 17, n.Hours())
	assert.Equal(t, 30, n.Minutes())
}

func TestSyncAppliesOffset(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(epoch)
	n := NewNTP("pool.ntp.org",
		WithClock(clock),
		WithQuery(func(context.Context, string) (time.Duration, error) {
			return 90 * time.Second, nil
		}),
	)

	_, synced := n.LastSync()
	assert.False(t, synced)

	require.NoError(t, n.Sync(context.Background()))
	assert.Equal(t, 12, n.Hours())
	assert.Equal(t, 1, n.Minutes())

	last, synced := n.LastSync()
	assert.True(t, synced)
	assert.Equal(t, epoch, last.UTC())
}

func TestSyncError(t *testing.T) {
	t.Parallel()

	boom := errors.New("timeout")
	n := NewNTP("pool.ntp.org",
		WithClock(clockwork.NewFakeClockAt(epoch)),
		WithQuery(func(context.Context, string) (time.Duration, error) { return 0, boom }),
	)
	require.ErrorIs(t, n.Sync(context.Background()), boom)

	empty := NewNTP("", WithClock(clockwork.NewFakeClockAt(epoch)))
	require.ErrorIs(t, empty.Sync(context.Background()), ErrNoServer)
}

func TestUpdateRateLimited(t *testing.T) {
	t.Parallel()

	var queries atomic.Int32
	clock := clockwork.NewFakeClockAt(epoch)
	n := NewNTP("pool.ntp.org",
		WithClock(clock),
		WithInterval(time.Minute),
		WithQuery(func(context.Context, string) (time.Duration, error) {
			queries.Add(1)
			return time.Second, nil
		}),
	)

	n.Update()
	n.Wait()
	n.Update()
	n.Wait()
	assert.Equal(t, int32(1), queries.Load())

	clock.Advance(time.Minute)
	n.Update()
	n.Wait()
	assert.Equal(t, int32(2), queries.Load())
}

func TestUpdateSkipsWhileInflight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var queries atomic.Int32
	clock := clockwork.NewFakeClockAt(epoch)
	n := NewNTP("pool.ntp.org",
		WithClock(clock),
		WithInterval(time.Second),
		WithQuery(func(context.Context, string) (time.Duration, error) {
			queries.Add(1)
			<-release
			return 0, nil
		}),
	)

	n.Update()
	clock.Advance(time.Hour)
	n.Update()
	close(release)
	n.Wait()
	assert.Equal(t, int32(1), queries.Load())
}
