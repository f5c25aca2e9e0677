// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ErrorResponse is the JSON body returned for calendar errors. Code is a
// stable machine-readable value the UI uses to pick a prompt
// (for example "reauth_required" shows a "reconnect" button).
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DisconnectResponse is returned by the disconnect endpoint.
type DisconnectResponse struct {
	Success bool `json:"success"`
}

// CalendarListResponse wraps the calendars of the linked account.
type CalendarListResponse struct {
	Calendars []CalendarEntry `json:"calendars"`
	Length    int             `json:"length"`
}

// VersionResponse is returned by the version endpoint.
type VersionResponse struct {
	Version string `json:"version"`
}
