// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils holds small helpers shared by the transport and adapter
// layers: request context keys, JSON responses, the outbound HTTP client,
// JWT sessions, OAuth state values and IDs.
package utils

import (
	"context"
)

type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey stores the authenticated user's int64 ID. The auth middleware
// sets it; calendar handlers read it with [GetUserIDFromContext].
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext returns the user ID and false if it is missing or
// not an int64.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID under [UserIDCtxKey].
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}
