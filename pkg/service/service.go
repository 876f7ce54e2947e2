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

package service

import (
	"context"
	"net"

	"github.com/matrixclock/matrixclock/pkg/api"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/matrixclock/matrixclock/pkg/helpers"
	"github.com/matrixclock/matrixclock/pkg/matrix"
	"github.com/matrixclock/matrixclock/pkg/service/broker"
	"github.com/matrixclock/matrixclock/pkg/service/connectivity"
	"github.com/matrixclock/matrixclock/pkg/service/discovery"
	"github.com/matrixclock/matrixclock/pkg/service/publishers"
	"github.com/matrixclock/matrixclock/pkg/service/sources"
	"github.com/matrixclock/matrixclock/pkg/timesource"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	notificationQueueSize = 100
	subscriberBufferSize  = 100
	reloadTimeout         = config.APIRequestTimeout
)

// Deps are the parts of the service that talk to hardware or the network.
// The caller owns Driver and closes it after the service is done.
type Deps struct {
	Driver matrix.Driver
	Link   connectivity.Link
	// Time defaults to NTP against the configured server.
	Time timesource.Source
	// Listener defaults to a listener on the configured API address.
	Listener net.Listener
}

func newTimeSource(cfg *config.Instance) *timesource.NTP {
	return timesource.NewNTP(cfg.NTPServer(),
		timesource.WithInterval(cfg.NTPInterval()),
		timesource.WithUTCOffset(cfg.UTCOffset()),
	)
}

// Start brings up the display controller and everything that feeds it.
// Stop cancels the service and waits for cleanup; done is closed once the
// service has stopped for any reason.
func Start(
	cfg *config.Instance,
	deps Deps,
) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)
	log.Info().Msgf("device id: %s", cfg.DeviceID())

	ctx, cancel := context.WithCancel(context.Background())

	ns := make(chan models.Notification, notificationQueueSize)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	ts := deps.Time
	var ntpSource *timesource.NTP
	if ts == nil {
		log.Info().Str("server", cfg.NTPServer()).Msg("using ntp time source")
		ntpSource = newTimeSource(cfg)
		ts = ntpSource
	}

	ctrl := NewController(cfg, deps.Driver, deps.Link, ts, ns)
	if cfg.AnnounceIP() {
		if text := helpers.AnnouncementText(helpers.GetLocalIP()); text != "" {
			if announceErr := ctrl.Announce(text); announceErr != nil {
				log.Warn().Err(announceErr).Msg("failed to queue ip announcement")
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	log.Info().Msg("starting display controller")
	g.Go(func() error {
		return ctrl.Run(gctx)
	})

	log.Info().Msg("starting mDNS discovery service")
	discoveryService := discovery.New(cfg)
	if discoveryErr := discoveryService.Start(); discoveryErr != nil {
		log.Error().Err(discoveryErr).Msg("mDNS discovery failed to start (continuing without discovery)")
	}

	log.Info().Msg("starting API service")
	server := api.NewServer(gctx, cfg, ctrl)
	apiNotifications, _ := notifBroker.Subscribe(subscriberBufferSize)
	g.Go(func() error {
		if deps.Listener != nil {
			return server.ServeListener(gctx, deps.Listener, apiNotifications)
		}
		return server.Serve(gctx, apiNotifications)
	})

	log.Info().Msg("starting publishers")
	publisherNotifications, _ := notifBroker.Subscribe(subscriberBufferSize)
	activePublishers := startPublishers(cfg)
	g.Go(func() error {
		fanOut(gctx, activePublishers, publisherNotifications)
		return nil
	})

	log.Info().Msg("starting message sources")
	activeSources := startSources(gctx, cfg, ctrl)

	stopWatch, watchErr := cfg.Watch(func() {
		reload(gctx, cfg, ctrl, ntpSource)
	})
	if watchErr != nil {
		log.Warn().Err(watchErr).Msg("config file will not be reloaded on change")
	}

	doneCh := make(chan struct{})
	var runErr error
	go func() {
		runErr = g.Wait()
		if runErr != nil {
			log.Error().Err(runErr).Msg("service stopped with error")
		}
		cancel()
		log.Info().Msg("service context cancelled, running cleanup")

		if stopWatch != nil {
			if closeErr := stopWatch(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing config watcher")
			}
		}
		discoveryService.Stop()
		for _, source := range activeSources {
			source.Stop()
		}
		for _, publisher := range activePublishers {
			publisher.Stop()
		}
		notifBroker.Stop()
		if ntpSource != nil {
			ntpSource.Wait()
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return runErr
	}
	return stop, doneCh, nil
}

// reload applies a changed config file to the running service.
func reload(ctx context.Context, cfg *config.Instance, ctrl *Controller, ntpSource *timesource.NTP) {
	if ntpSource != nil {
		ntpSource.SetUTCOffset(cfg.UTCOffset())
		ntpSource.SetInterval(cfg.NTPInterval())
	}
	reloadCtx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()
	if err := ctrl.Reload(reloadCtx); err != nil {
		log.Warn().Err(err).Msg("failed to apply reloaded config")
	}
}

func startPublishers(cfg *config.Instance) []*publishers.MQTTPublisher {
	active := make([]*publishers.MQTTPublisher, 0)
	for _, mqttCfg := range cfg.MQTTPublishers() {
		// nil means enabled
		if mqttCfg.Enabled != nil && !*mqttCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", mqttCfg.Broker, mqttCfg.Topic)
		publisher := publishers.NewMQTTPublisher(mqttCfg.Broker, mqttCfg.Topic, mqttCfg.Filter)
		if err := publisher.Start(); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			continue
		}
		active = append(active, publisher)
	}
	if len(active) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(active))
	}
	return active
}

// fanOut must keep draining notifChan even with no publishers, otherwise
// the broker subscription fills up and drops everything.
func fanOut(
	ctx context.Context,
	active []*publishers.MQTTPublisher,
	notifChan <-chan models.Notification,
) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("mqtt publisher fan-out: stopping")
			return
		case notif, ok := <-notifChan:
			if !ok {
				log.Debug().Msg("mqtt publisher fan-out: notification channel closed")
				return
			}
			for _, pub := range active {
				if err := pub.Publish(notif); err != nil {
					log.Warn().Err(err).Msgf("failed to publish %s notification", notif.Method)
				}
			}
		}
	}
}

func startSources(ctx context.Context, cfg *config.Instance, ctrl sources.Submitter) []*sources.MQTTSource {
	active := make([]*sources.MQTTSource, 0)
	for _, srcCfg := range cfg.MQTTSources() {
		if srcCfg.Enabled != nil && !*srcCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT source: %s (topic: %s)", srcCfg.Broker, srcCfg.Topic)
		source := sources.NewMQTTSource(ctx, srcCfg.Broker, srcCfg.Topic, ctrl)
		if err := source.Start(); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT source for %s", srcCfg.Broker)
			continue
		}
		active = append(active, source)
	}
	return active
}
