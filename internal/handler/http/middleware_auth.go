// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// The token is taken from the "Authorization: Bearer" header or, when the
// header is absent, from the session cookie. It is validated via
// [service.AuthService.ParseToken]; on success the user's ID is stored in
// the request context under [utils.UserIDCtxKey] and the request logger is
// tagged with it.
//
// Requests without a usable token are rejected with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		tokenString, err := tokenFromRequest(r)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx = utils.WithUserID(ctx, token.UserID)
		ctx = log.ForUser(token.UserID).WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest prefers the Authorization header over the session cookie.
// A malformed header is an error even if a cookie is present.
func tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, err := utils.ParseBearerToken(header)
		if err != nil {
			return "", ErrInvalidAuthorizationHeader
		}
		return token, nil
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", ErrNoCredentials
	}

	return cookie.Value, nil
}
