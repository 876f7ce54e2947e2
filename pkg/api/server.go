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

// Package api serves the clock's REST routes and notification websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/matrixclock/matrixclock/pkg/api/methods"
	"github.com/matrixclock/matrixclock/pkg/api/middleware"
	"github.com/matrixclock/matrixclock/pkg/api/models"
	"github.com/matrixclock/matrixclock/pkg/config"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	maxBodySize     = 16 << 10
	shutdownTimeout = 5 * time.Second
)

var defaultOrigins = []string{"https://*", "http://*"}

var methodMap = map[string]methods.Handler{
	models.MethodMessage: methods.HandleMessage,
	models.MethodStop:    methods.HandleStop,
	models.MethodStatus:  methods.HandleStatus,
	models.MethodInfo:    methods.HandleInfo,
}

type Server struct {
	ctx     context.Context
	cfg     *config.Instance
	ctrl    methods.Controller
	limiter *middleware.IPRateLimiter
	ws      *melody.Melody
	router  chi.Router
}

// NewServer builds the router. ctx bounds websocket calls and the rate
// limiter cleanup.
func NewServer(ctx context.Context, cfg *config.Instance, ctrl methods.Controller) *Server {
	s := &Server{
		ctx:     ctx,
		cfg:     cfg,
		ctrl:    ctrl,
		limiter: middleware.NewIPRateLimiter(),
		ws:      melody.New(),
	}
	s.limiter.StartCleanup(ctx)

	s.ws.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	s.ws.HandleMessage(middleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.APIRequestTimeout))
		r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))

		r.Post("/api/message", s.handle(methods.HandleMessage, true))
		r.Post("/api/stop", s.handle(methods.HandleStop, false))
		r.Get("/api/status", s.handle(methods.HandleStatus, false))
		r.Get("/api/info", s.handle(methods.HandleInfo, false))
	})

	r.Get("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handle(h methods.Handler, withBody bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params json.RawMessage
		if withBody {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
			if err != nil {
				log.Warn().Err(err).Msg("failed to read request body")
				http.Error(w, models.ErrTextInvalidJSON, http.StatusBadRequest)
				return
			}
			params = body
		}

		resp, err := h(methods.RequestEnv{
			Context:    r.Context(),
			Controller: s.ctrl,
			Config:     s.cfg,
			Params:     params,
			RemoteAddr: r.RemoteAddr,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeResult(w, resp)
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, models.ErrNotRunning):
		return models.ErrTextNotRunning
	case errors.Is(err, context.DeadlineExceeded):
		return models.ErrTextRequestTimedOut
	default:
		return err.Error()
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := methods.StatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", code).Msg("request failed")
	}
	http.Error(w, errorText(err), code)
}

func writeResult(w http.ResponseWriter, resp any) {
	if text, ok := resp.(methods.TextResponse); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, string(text)); err != nil {
			log.Warn().Err(err).Msg("failed to write response")
		}
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, fmt.Errorf("failed to marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	if string(msg) == "ping" {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil || req.Method == "" {
		sendError(session, uuid.Nil, http.StatusBadRequest, models.ErrTextInvalidJSON)
		return
	}
	if req.ID == nil {
		log.Debug().Str("method", req.Method).Msg("websocket call without id, ignoring")
		return
	}

	handler, ok := methodMap[req.Method]
	if !ok {
		sendError(session, *req.ID, http.StatusNotFound, "unknown method: "+req.Method)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, config.APIRequestTimeout)
	defer cancel()

	resp, err := handler(methods.RequestEnv{
		Context:    ctx,
		Controller: s.ctrl,
		Config:     s.cfg,
		Params:     req.Params,
		RemoteAddr: session.Request.RemoteAddr,
	})
	if err != nil {
		sendError(session, *req.ID, methods.StatusCode(err), errorText(err))
		return
	}

	result, err := json.Marshal(resp)
	if err != nil {
		sendError(session, *req.ID, http.StatusInternalServerError, err.Error())
		return
	}
	sendResponse(session, models.ResponseObject{ID: *req.ID, Result: result})
}

func sendError(session *melody.Session, id uuid.UUID, code int, message string) {
	sendResponse(session, models.ResponseObject{
		ID:    id,
		Error: &models.ErrorObject{Code: code, Message: message},
	})
}

func sendResponse(session *melody.Session, resp models.ResponseObject) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("marshalling websocket response")
		return
	}
	if err := session.Write(data); err != nil {
		log.Error().Err(err).Msg("sending websocket response")
	}
}

// BroadcastNotifications forwards notifications to every websocket client
// until the channel closes or ctx ends.
func (s *Server) BroadcastNotifications(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(notif)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := s.ws.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context, notifications <-chan models.Notification) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.APIListen(), err)
	}
	return s.ServeListener(ctx, listener, notifications)
}

func (s *Server) ServeListener(
	ctx context.Context,
	listener net.Listener,
	notifications <-chan models.Notification,
) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: config.APIRequestTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.BroadcastNotifications(ctx, notifications)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("API server listening")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	log.Debug().Msg("shutting down API server")
	if err := s.ws.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing websocket sessions")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}
