// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/MKhiriev/shift-calendar/internal/adapter"
	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/locks"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/internal/store"
	"github.com/MKhiriev/shift-calendar/models"
)

type Services struct {
	AuthService    AuthService
	AppInfoService AppInfoService

	// CalendarAuthService and CalendarService are nil when the calendar
	// feature is not configured.
	CalendarAuthService CalendarAuthService
	CalendarService     CalendarService
}

// CalendarDependencies are the outbound collaborators of the calendar services.
type CalendarDependencies struct {
	Provider adapter.OAuthProvider
	Client   adapter.CalendarClient
	Locker   locks.Locker
	Metrics  *metrics.Metrics
}

func NewServices(
	storages *store.Storages,
	cfg *config.StructuredConfig,
	build models.AppBuildInfo,
	calendar *CalendarDependencies,
	logger *logger.Logger,
) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, err
	}

	services := &Services{
		AuthService:    NewAuthService(storages.UserRepository, cfg.App, logger),
		AppInfoService: appInfoService,
	}

	if !cfg.Calendar.Enabled() || calendar == nil {
		logger.Info().Msg("google calendar integration disabled")
		return services, nil
	}

	cipher, err := crypto.NewCipherBox(cfg.Calendar.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("calendar encryption key: %w", err)
	}

	tokens := NewTokenStore(storages.CredentialRepository, cipher, logger)
	services.CalendarAuthService = NewCalendarAuthService(tokens, calendar.Provider, calendar.Locker, calendar.Metrics, logger)
	services.CalendarService = NewCalendarService(services.CalendarAuthService, calendar.Client, logger)

	return services, nil
}
