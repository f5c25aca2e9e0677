// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/shift-calendar/internal/adapter"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/models"
)

// calendarService reads from the user's Google Calendar with a token
// obtained from CalendarAuthService.
type calendarService struct {
	auth   CalendarAuthService
	client adapter.CalendarClient

	logger *logger.Logger
}

func NewCalendarService(auth CalendarAuthService, client adapter.CalendarClient, logger *logger.Logger) CalendarService {
	return &calendarService{
		auth:   auth,
		client: client,
		logger: logger,
	}
}

func (s *calendarService) ListCalendars(ctx context.Context, userID int64) ([]models.CalendarEntry, error) {
	accessToken, err := s.auth.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	calendars, err := s.client.ListCalendars(ctx, accessToken)
	if errors.Is(err, adapter.ErrUnauthorized) {
		logger.FromContext(ctx).ForUser(userID).Warn().Msg("calendar API rejected a fresh access token")
		return nil, ErrReauthRequired
	}
	if err != nil {
		logger.FromContext(ctx).ForUser(userID).Err(err).Msg("listing calendars failed")
		return nil, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}

	return calendars, nil
}
