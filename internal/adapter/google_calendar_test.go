// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/shift-calendar/models"
)

func TestListCalendars_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/users/me/calendarList", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"items":[
			{"id":"primary@example.com","summary":"Shifts","primary":true,"timeZone":"Europe/Berlin"},
			{"id":"team@group.calendar.google.com","summary":"Team"}
		]}`)
	}))
	defer srv.Close()

	client, err := NewGoogleCalendarClient(newTestProvider(t, srv, time.Second))
	require.NoError(t, err)

	calendars, err := client.ListCalendars(context.Background(), "access")
	require.NoError(t, err)

	assert.Equal(t, []models.CalendarEntry{
		{ID: "primary@example.com", Summary: "Shifts", Primary: true, TimeZone: "Europe/Berlin"},
		{ID: "team@group.calendar.google.com", Summary: "Team"},
	}, calendars)
}

func TestListCalendars_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"code":401,"message":"Invalid Credentials"}}`)
	}))
	defer srv.Close()

	client, err := NewGoogleCalendarClient(newTestProvider(t, srv, time.Second))
	require.NoError(t, err)

	_, err = client.ListCalendars(context.Background(), "access")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewGoogleCalendarClient_RejectsForeignProvider(t *testing.T) {
	_, err := NewGoogleCalendarClient(nil)
	assert.Error(t, err)
}
