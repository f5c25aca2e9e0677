// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrInvalidDataProvided     = errors.New("invalid data provided")
	ErrWrongPassword           = errors.New("wrong password")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
)

var (
	// ErrNotConnected is returned when the user has no active calendar link.
	ErrNotConnected = errors.New("google calendar is not connected")

	// ErrReauthRequired is returned when the provider rejected the stored
	// refresh token. The credentials have been cleared.
	ErrReauthRequired = errors.New("google calendar authorization expired, reconnect required")

	// ErrTransientRefresh is returned when a refresh could not complete for a
	// reason that may go away on retry. The credentials are left untouched.
	ErrTransientRefresh = errors.New("access token refresh temporarily unavailable")

	// ErrTokenExchange is returned when an authorization code could not be
	// turned into a complete token pair.
	ErrTokenExchange = errors.New("authorization code exchange failed")

	// ErrCalendarUnavailable is returned when the calendar API call itself
	// failed after a valid access token was obtained.
	ErrCalendarUnavailable = errors.New("calendar API unavailable")
)
