// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrInvalidGrant is returned when the provider rejected the grant with
	// the OAuth error code "invalid_grant".
	ErrInvalidGrant = errors.New("provider rejected the grant")
	// ErrProviderUnavailable wraps every other provider failure: network
	// errors, timeouts, 5xx answers and unexpected OAuth errors.
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
)
