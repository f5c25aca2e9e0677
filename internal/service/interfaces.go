// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/shift-calendar/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// TokenStore is the only component that sees plaintext provider tokens.
// It encrypts on the way into the credential repository and decrypts on
// the way out.
type TokenStore interface {
	// LoadAccessToken returns the decrypted access token and its expiry.
	// A zero expiry means the expiry is unknown.
	LoadAccessToken(ctx context.Context, userID int64) (string, time.Time, error)
	LoadRefreshToken(ctx context.Context, userID int64) (string, error)
	// LoadRecord returns the stored record with tokens still encrypted.
	LoadRecord(ctx context.Context, userID int64) (models.CredentialRecord, error)
	SaveTokens(ctx context.Context, userID int64, update models.TokenUpdate) error
	SaveConnection(ctx context.Context, userID int64, token models.ProviderToken, accountEmail string) error
	ClearCredentials(ctx context.Context, userID int64) error
}

// CalendarAuthService owns the lifecycle of a user's Google Calendar link.
type CalendarAuthService interface {
	// GetValidAccessToken returns an access token that stays valid for at
	// least the refresh buffer, refreshing it first when needed.
	GetValidAccessToken(ctx context.Context, userID int64) (string, error)
	Connect(ctx context.Context, userID int64, authorizationCode string) error
	Disconnect(ctx context.Context, userID int64) error
	AuthCodeURL(state string) string
	Status(ctx context.Context, userID int64) (models.CalendarStatus, error)
}

type CalendarService interface {
	ListCalendars(ctx context.Context, userID int64) ([]models.CalendarEntry, error)
}
