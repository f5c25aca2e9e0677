// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"

	"github.com/MKhiriev/shift-calendar/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// OAuthProvider is the outbound side of the external calendar provider's
// OAuth 2.0 authorization server.
//
// Exchange and Refresh fail with [ErrInvalidGrant] when the provider answers
// with the OAuth error code "invalid_grant" (the grant is revoked, expired
// or otherwise unusable). Every other failure, including a timeout, is
// wrapped in [ErrProviderUnavailable].
type OAuthProvider interface {
	// AuthCodeURL returns the consent page URL for the given anti-forgery
	// state. Offline access and forced consent are always requested so that
	// the provider issues a refresh token.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for a token set.
	Exchange(ctx context.Context, code string) (models.ProviderToken, error)
	// Refresh obtains a new access token. The returned RefreshToken is empty
	// unless the provider rotated it.
	Refresh(ctx context.Context, refreshToken string) (models.ProviderToken, error)
	// AccountEmail returns the email of the account the token belongs to.
	AccountEmail(ctx context.Context, accessToken string) (string, error)
	// Revoke invalidates token at the provider.
	Revoke(ctx context.Context, token string) error
}

// CalendarClient reads calendar data of a linked account.
type CalendarClient interface {
	ListCalendars(ctx context.Context, accessToken string) ([]models.CalendarEntry, error)
}
