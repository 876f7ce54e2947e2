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

import "github.com/stretchr/testify/mock"

// MockTimeSource is a mock implementation of timesource.Source.
type MockTimeSource struct {
	mock.Mock
}

func (m *MockTimeSource) Hours() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockTimeSource) Minutes() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockTimeSource) Update() {
	m.Called()
}

// NewMockTimeSource returns a source stuck at hours:minutes.
func NewMockTimeSource(hours, minutes int) *MockTimeSource {
	m := &MockTimeSource{}
	m.On("Hours").Return(hours).Maybe()
	m.On("Minutes").Return(minutes).Maybe()
	m.On("Update").Return().Maybe()
	return m
}
