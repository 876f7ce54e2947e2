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
	"fmt"

	"github.com/stretchr/testify/mock"
)

// MockDriver is a mock implementation of matrix.Driver. Use it to assert on
// the exact calls a renderer makes; matrix.Memory is simpler when only the
// resulting pixels matter.
type MockDriver struct {
	mock.Mock
}

func (m *MockDriver) Clear() {
	m.Called()
}

func (m *MockDriver) SetPixel(col, row int, on bool) {
	m.Called(col, row, on)
}

func (m *MockDriver) SetChar(col int, r rune) int {
	args := m.Called(col, r)
	return args.Int(0)
}

func (m *MockDriver) SetRow(module, row int, bits byte) error {
	args := m.Called(module, row, bits)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockDriver) Flush() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockDriver) SetBrightness(module int, level uint8) error {
	args := m.Called(module, level)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockDriver) SetPower(module int, on bool) error {
	args := m.Called(module, on)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockDriver) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// NewMockDriver returns a driver that accepts every call.
func NewMockDriver() *MockDriver {
	m := &MockDriver{}
	m.On("Clear").Return().Maybe()
	m.On("SetPixel", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	m.On("SetChar", mock.Anything, mock.Anything).Return(5).Maybe()
	m.On("SetRow", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Flush").Return(nil).Maybe()
	m.On("SetBrightness", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SetPower", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}
