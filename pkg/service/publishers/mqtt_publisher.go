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

// Package publishers mirrors display notifications to MQTT brokers so home
// automation can react to what the clock is showing.
package publishers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout  = 10 * time.Second
	publishTimeout  = 2 * time.Second
	disconnectQuiet = 250
)

// ClientFactory builds the paho client. Tests swap it for a mock.
type ClientFactory func(*mqtt.ClientOptions) mqtt.Client

type MQTTPublisher struct {
	client    mqtt.Client
	newClient ClientFactory
	broker    string
	topic     string
	filter    []string
}

func NewMQTTPublisher(broker, topic string, filter []string) *MQTTPublisher {
	return &MQTTPublisher{
		newClient: mqtt.NewClient,
		broker:    broker,
		topic:     topic,
		filter:    filter,
	}
}

// BrokerURL adds the tcp scheme to bare host:port addresses.
func BrokerURL(broker string) string {
	if u, err := url.Parse(broker); err == nil && u.Scheme != "" && u.Host != "" {
		return broker
	}
	return "tcp://" + broker
}

func (p *MQTTPublisher) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(p.broker))
	opts.SetClientID("matrixclock-pub-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", p.broker).Msg("mqtt publisher: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", p.broker).Msg("mqtt publisher: connection lost")
	}

	p.client = p.newClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timed out connecting to MQTT broker %s", p.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Info().Str("broker", p.broker).Str("topic", p.topic).Msg("mqtt publisher started")
	return nil
}

func (p *MQTTPublisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		log.Debug().Str("broker", p.broker).Msg("mqtt publisher: disconnecting")
		p.client.Disconnect(disconnectQuiet)
	}
}

// Publish sends notif as JSON unless the filter excludes it.
func (p *MQTTPublisher) Publish(notif models.Notification) error {
	if !p.matchesFilter(notif.Method) {
		return nil
	}
	if p.client == nil {
		return fmt.Errorf("mqtt publisher for %s not started", p.broker)
	}

	payload, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing %s", notif.Method)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", notif.Method, err)
	}

	log.Debug().Str("method", notif.Method).Msg("mqtt publisher: published notification")
	return nil
}

// An empty filter publishes everything.
func (p *MQTTPublisher) matchesFilter(method string) bool {
	return len(p.filter) == 0 || slices.Contains(p.filter, method)
}
