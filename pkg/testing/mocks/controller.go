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

	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/stretchr/testify/mock"
)

// MockController is a mock implementation of methods.Controller.
type MockController struct {
	mock.Mock
}

func (m *MockController) SubmitMessage(ctx context.Context, text string) (models.MessageResponse, error) {
	args := m.Called(ctx, text)
	resp, _ := args.Get(0).(models.MessageResponse)
	if err := args.Error(1); err != nil {
		return resp, fmt.Errorf("mock operation failed: %w", err)
	}
	return resp, nil
}

func (m *MockController) StopScroll(ctx context.Context) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockController) QueryStatus(ctx context.Context) (models.StatusResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(models.StatusResponse)
	if err := args.Error(1); err != nil {
		return resp, fmt.Errorf("mock operation failed: %w", err)
	}
	return resp, nil
}

func (m *MockController) Info(ctx context.Context) (models.InfoResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(models.InfoResponse)
	if err := args.Error(1); err != nil {
		return resp, fmt.Errorf("mock operation failed: %w", err)
	}
	return resp, nil
}
