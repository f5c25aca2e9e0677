// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/service"
	"github.com/MKhiriev/shift-calendar/internal/store"
	"github.com/MKhiriev/shift-calendar/internal/utils"
	"github.com/MKhiriev/shift-calendar/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrVersionIsNotSpecified:   http.StatusInternalServerError,

	service.ErrNotConnected:        http.StatusConflict,
	service.ErrReauthRequired:      http.StatusConflict,
	service.ErrTransientRefresh:    http.StatusServiceUnavailable,
	service.ErrTokenExchange:       http.StatusBadGateway,
	service.ErrCalendarUnavailable: http.StatusBadGateway,

	crypto.ErrDecryption:    http.StatusConflict,
	crypto.ErrConfiguration: http.StatusInternalServerError,

	store.ErrLoginAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:     http.StatusNotFound,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

// errorCodeMap holds the machine-readable codes the settings page switches on.
var errorCodeMap = map[error]string{
	crypto.ErrConfiguration:        "configuration_error",
	crypto.ErrDecryption:           "credentials_corrupted",
	service.ErrNotConnected:        "not_connected",
	service.ErrReauthRequired:      "reauth_required",
	service.ErrTransientRefresh:    "refresh_unavailable",
	service.ErrTokenExchange:       "token_exchange_failed",
	service.ErrCalendarUnavailable: "calendar_unavailable",
}

// lookupError returns the mapped sentinel err matches, if any, and its status.
func lookupError(err error) (error, int) {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return target, status
		}
	}
	return nil, http.StatusInternalServerError
}

func statusFromError(err error) int {
	_, status := lookupError(err)
	return status
}

// writeError answers with an [models.ErrorResponse]. Only the sentinel
// message is exposed; wrapped causes stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	target, status := lookupError(err)

	response := models.ErrorResponse{Error: http.StatusText(status)}
	if target != nil {
		response.Error = target.Error()
		response.Code = errorCodeMap[target]
	}

	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	if writeErr := utils.WriteJSON(w, response, status); writeErr != nil {
		log.Err(writeErr).Msg("failed to write error response")
	}
}
