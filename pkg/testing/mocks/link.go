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

package mocks

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"
)

// MockLink is a mock implementation of connectivity.Link using testify/mock.
type MockLink struct {
	mock.Mock
}

func (m *MockLink) Connected(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	if err := args.Error(1); err != nil {
		return args.Bool(0), fmt.Errorf("mock operation failed: %w", err)
	}
	return args.Bool(0), nil
}

func (m *MockLink) Reconnect() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// NewMockLink returns a link that always reports connected and accepts
// reconnect requests.
func NewMockLink() *MockLink {
	m := &MockLink{}
	m.On("Connected", mock.Anything).Return(true, nil).Maybe()
	m.On("Reconnect").Return(nil).Maybe()
	return m
}
