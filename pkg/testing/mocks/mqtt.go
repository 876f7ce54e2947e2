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
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matrixclock/matrixclock/pkg/helpers/syncutil"
)

type PublishedMessage struct {
	Payload  any
	Topic    string
	QoS      byte
	Retained bool
}

// MockMQTTClient is an in-memory mqtt.Client. Subscriptions are recorded so
// tests can deliver messages with Deliver.
type MockMQTTClient struct {
	ConnectError   error
	PublishError   error
	SubscribeError error
	handlers       map[string]mqtt.MessageHandler
	published      []PublishedMessage
	disconnects    int
	connected      bool
	mu             syncutil.Mutex
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{handlers: make(map[string]mqtt.MessageHandler)}
}

func (m *MockMQTTClient) Published() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.published...)
}

func (m *MockMQTTClient) Disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

// Deliver feeds payload to the handler subscribed to topic. It reports
// whether anything was subscribed.
func (m *MockMQTTClient) Deliver(topic string, payload []byte) bool {
	m.mu.Lock()
	h, ok := m.handlers[topic]
	m.mu.Unlock()
	if !ok {
		return false
	}
	h(m, &MockMQTTMessage{TopicName: topic, Body: payload})
	return true
}

func (m *MockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockMQTTClient) IsConnectionOpen() bool {
	return m.IsConnected()
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectError != nil {
		return &MockToken{Err: m.ConnectError}
	}
	m.connected = true
	return &MockToken{}
}

func (m *MockMQTTClient) Disconnect(_ uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnects++
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return &MockToken{Err: m.PublishError}
	}
	m.published = append(m.published, PublishedMessage{
		Topic:    topic,
		QoS:      qos,
		Retained: retained,
		Payload:  payload,
	})
	return &MockToken{}
}

func (m *MockMQTTClient) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeError != nil {
		return &MockToken{Err: m.SubscribeError}
	}
	m.handlers[topic] = callback
	return &MockToken{}
}

func (m *MockMQTTClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic, qos := range filters {
		if tok := m.Subscribe(topic, qos, callback); tok.Error() != nil {
			return tok
		}
	}
	return &MockToken{}
}

func (m *MockMQTTClient) Unsubscribe(topics ...string) mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range topics {
		delete(m.handlers, t)
	}
	return &MockToken{}
}

func (*MockMQTTClient) AddRoute(_ string, _ mqtt.MessageHandler) {}

func (*MockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// MockToken is an already completed mqtt.Token.
type MockToken struct {
	Err error
}

func (*MockToken) Wait() bool { return true }

func (*MockToken) WaitTimeout(time.Duration) bool { return true }

func (*MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *MockToken) Error() error { return t.Err }

type MockMQTTMessage struct {
	TopicName string
	Body      []byte
}

func (*MockMQTTMessage) Duplicate() bool { return false }

func (*MockMQTTMessage) Qos() byte { return 0 }

func (*MockMQTTMessage) Retained() bool { return false }

func (m *MockMQTTMessage) Topic() string { return m.TopicName }

func (*MockMQTTMessage) MessageID() uint16 { return 0 }

func (m *MockMQTTMessage) Payload() []byte { return m.Body }

func (*MockMQTTMessage) Ack() {}
