// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package grpc exposes the standard gRPC health service for the
// shift-calendar server so that orchestrators can probe it without going
// through the HTTP API.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/service"
)

// CalendarService is the health service name reporting whether the Google
// Calendar integration is configured.
const CalendarService = "calendar"

// Handler is the root gRPC transport handler.
type Handler struct {
	// health tracks the serving status of the server and its sub-services.
	health *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler]. The overall status starts as SERVING;
// the "calendar" status is SERVING only when the calendar services exist.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	h := &Handler{
		health: health.NewServer(),
		logger: logger,
	}

	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	calendarStatus := healthpb.HealthCheckResponse_NOT_SERVING
	if services != nil && services.CalendarAuthService != nil {
		calendarStatus = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(CalendarService, calendarStatus)

	logger.Debug().Str("calendar", calendarStatus.String()).Msg("gRPC handler created")
	return h
}

// Register attaches the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown flips every status to NOT_SERVING so that watchers see the
// server going away before connections are closed.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
