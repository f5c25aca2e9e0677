// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/MKhiriev/shift-calendar/models"
)

// googleCalendarClient implements [CalendarClient] with the Calendar v3 API.
// It shares the HTTP client and timeout of the OAuth provider.
type googleCalendarClient struct {
	provider *googleOAuthProvider
}

// NewGoogleCalendarClient returns a [CalendarClient] using the transport of
// provider, which must have been built by [NewGoogleOAuthProvider].
func NewGoogleCalendarClient(provider OAuthProvider) (CalendarClient, error) {
	p, ok := provider.(*googleOAuthProvider)
	if !ok {
		return nil, fmt.Errorf("calendar client needs the google oauth provider, got %T", provider)
	}
	return &googleCalendarClient{provider: p}, nil
}

func (c *googleCalendarClient) ListCalendars(ctx context.Context, accessToken string) ([]models.CalendarEntry, error) {
	ctx, cancel := c.provider.withTimeout(ctx)
	defer cancel()

	opts := []option.ClientOption{option.WithHTTPClient(c.provider.authorizedClient(ctx, accessToken))}
	if c.provider.endpoints.apiBaseURL != "" {
		opts = append(opts, option.WithEndpoint(c.provider.endpoints.apiBaseURL+"/calendar/v3/"))
	}

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	entries := make([]models.CalendarEntry, 0, 8)
	err = service.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			entries = append(entries, models.CalendarEntry{
				ID:       item.Id,
				Summary:  item.Summary,
				Primary:  item.Primary,
				TimeZone: item.TimeZone,
			})
		}
		return nil
	})
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: calendar list: %w", ErrProviderUnavailable, err)
	}

	return entries, nil
}
