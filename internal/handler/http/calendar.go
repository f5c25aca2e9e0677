// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/url"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/utils"
	"github.com/MKhiriev/shift-calendar/models"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // seconds
	oauthCookiePath  = "/api/calendar"
)

// Query values appended to the settings page URL after the OAuth callback.
const (
	callbackAccessDenied    = "access_denied"
	callbackInvalidCallback = "invalid_callback"
	callbackInvalidState    = "invalid_state"
	callbackFailed          = "callback_failed"
	callbackConnected       = "connected"
)

// calendarConnect starts the authorization code flow: it remembers a random
// state in a short-lived cookie and redirects to the consent screen.
func (h *Handler) calendarConnect(w http.ResponseWriter, r *http.Request) {
	state, err := utils.GenerateState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.stateCookie(state, oauthStateMaxAge))
	http.Redirect(w, r, h.services.CalendarAuthService.AuthCodeURL(state), http.StatusFound)
}

// calendarCallback finishes the flow started by calendarConnect. It always
// answers with a redirect to the settings page; the outcome travels in the
// query string.
func (h *Handler) calendarCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	query := r.URL.Query()

	// the state is single use whatever happens next
	http.SetCookie(w, h.stateCookie("", -1))

	if providerErr := query.Get("error"); providerErr != "" {
		log.Warn().Str("provider_error", providerErr).Msg("calendar consent was not granted")
		h.redirectToSettings(w, r, "error", callbackAccessDenied)
		return
	}

	code, state := query.Get("code"), query.Get("state")
	if code == "" || state == "" {
		log.Warn().Msg("callback without code or state")
		h.redirectToSettings(w, r, "error", callbackInvalidCallback)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || !utils.StatesEqual(cookie.Value, state) {
		log.Warn().Msg("oauth state mismatch")
		h.redirectToSettings(w, r, "error", callbackInvalidState)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		h.redirectToSettings(w, r, "error", callbackFailed)
		return
	}

	if err = h.services.CalendarAuthService.Connect(r.Context(), userID, code); err != nil {
		log.Err(err).Msg("calendar connect failed")
		h.redirectToSettings(w, r, "error", callbackFailed)
		return
	}

	h.redirectToSettings(w, r, "success", callbackConnected)
}

func (h *Handler) calendarStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.services.CalendarAuthService.Status(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) calendarDisconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.services.CalendarAuthService.Disconnect(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.DisconnectResponse{Success: true}, http.StatusOK)
}

func (h *Handler) listCalendars(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	calendars, err := h.services.CalendarService.ListCalendars(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if calendars == nil {
		calendars = []models.CalendarEntry{}
	}

	utils.WriteJSON(w, models.CalendarListResponse{Calendars: calendars, Length: len(calendars)}, http.StatusOK)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		logger.FromRequest(r).Error().Err(ErrNoUserInContext).Send()
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return userID, ok
}

func (h *Handler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     oauthStateCookie,
		Value:    value,
		Path:     oauthCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) redirectToSettings(w http.ResponseWriter, r *http.Request, key, value string) {
	target, err := url.Parse(h.settingsURL)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("settings_url", h.settingsURL).Msg("bad settings url")
		target = &url.URL{Path: "/"}
	}

	query := target.Query()
	query.Set(key, value)
	target.RawQuery = query.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}
