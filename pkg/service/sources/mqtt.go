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

// Package sources feeds messages to the display from places other than the
// HTTP API.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/service/publishers"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout = 5 * time.Second
	subscribeQoS   = 1
)

// Submitter is the part of the display controller a source needs.
type Submitter interface {
	SubmitMessage(ctx context.Context, text string) (models.MessageResponse, error)
}

type ClientFactory func(*mqtt.ClientOptions) mqtt.Client

// MQTTSource scrolls every message published on its topic. Payloads are
// either plain text or {"message": "..."}.
type MQTTSource struct {
	ctx       context.Context
	client    mqtt.Client
	newClient ClientFactory
	submitter Submitter
	broker    string
	topic     string
}

func NewMQTTSource(ctx context.Context, broker, topic string, submitter Submitter) *MQTTSource {
	return &MQTTSource{
		ctx:       ctx,
		newClient: mqtt.NewClient,
		submitter: submitter,
		broker:    broker,
		topic:     topic,
	}
}

func (s *MQTTSource) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(publishers.BrokerURL(s.broker))
	opts.SetClientID("matrixclock-src-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	// Subscribing in OnConnect restores the subscription after a reconnect.
	opts.OnConnect = s.subscribe
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", s.broker).Msg("mqtt source: connection lost")
	}

	s.client = s.newClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		s.client.Disconnect(0)
		return fmt.Errorf("timed out connecting to MQTT broker %s", s.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

func (s *MQTTSource) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *MQTTSource) subscribe(client mqtt.Client) {
	token := client.Subscribe(s.topic, subscribeQoS, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", s.topic).Msg("mqtt source: failed to subscribe")
		return
	}
	log.Info().Str("broker", s.broker).Str("topic", s.topic).Msg("mqtt source: subscribed")
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	text := ParsePayload(msg.Payload())
	if text == "" {
		log.Debug().Str("topic", msg.Topic()).Msg("mqtt source: ignoring empty message")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, config.APIRequestTimeout)
	defer cancel()

	if _, err := s.submitter.SubmitMessage(ctx, text); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("mqtt source: message rejected")
		return
	}
	log.Info().Str("topic", msg.Topic()).Msg("mqtt source: message submitted")
}

// ParsePayload extracts the message text from an MQTT payload.
func ParsePayload(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return ""
	}

	var params models.MessageParams
	if json.Unmarshal(payload, &params) == nil && params.Message != nil {
		return *params.Message
	}
	var s string
	if json.Unmarshal(payload, &s) == nil {
		return s
	}
	return trimmed
}
