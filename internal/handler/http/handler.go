// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"time"

	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  *metrics.Metrics

	// secureCookies marks the session and OAuth state cookies Secure.
	secureCookies bool

	// settingsURL is where the OAuth callback sends the browser back to.
	settingsURL string

	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, metrics *metrics.Metrics, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		metrics:        metrics,
		secureCookies:  cfg.App.SecureCookies,
		settingsURL:    cfg.Calendar.SettingsURL,
		requestTimeout: cfg.Server.RequestTimeout,
		logger:         logger,
	}
}
