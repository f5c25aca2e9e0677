// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CalendarStatus is the user-facing view of the calendar link.
// It never contains token material.
type CalendarStatus struct {
	Connected      bool       `json:"connected"`
	SyncEnabled    bool       `json:"sync_enabled"`
	Email          string     `json:"email,omitempty"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
	IsTokenExpired bool       `json:"is_token_expired"`
}

// CalendarEntry is one calendar of the linked provider account.
type CalendarEntry struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Primary  bool   `json:"primary"`
	TimeZone string `json:"time_zone,omitempty"`
}
