// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/handler/grpc"
	"github.com/MKhiriev/shift-calendar/internal/handler/http"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

func NewHandlers(services *service.Services, metrics *metrics.Metrics, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, metrics, cfg, logger)
	}
	if cfg.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
