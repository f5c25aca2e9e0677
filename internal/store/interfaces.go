// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/shift-calendar/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, user models.User) (models.User, error)
}

// CredentialRepository persists the calendar credential columns of a user.
// Token values passed in and returned are already encrypted.
type CredentialRepository interface {
	// GetCredentials returns the stored record or ErrNoUserWasFound.
	GetCredentials(ctx context.Context, userID int64) (models.CredentialRecord, error)
	// UpdateCredentials writes the non-nil fields of update in a single
	// statement.
	UpdateCredentials(ctx context.Context, update models.CredentialUpdate) error
	// ClearCredentials nulls every credential column and disables sync in a
	// single statement. Clearing an already cleared record succeeds.
	ClearCredentials(ctx context.Context, userID int64) error
}
