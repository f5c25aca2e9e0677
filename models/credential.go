// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CredentialRecord is the external calendar link of one user as it is
// stored: token fields hold serialized EncryptedSecret values, never
// plaintext. A nil pointer is a NULL column.
//
// Invariant: SyncEnabled implies AccessToken, RefreshToken and TokenExpiry
// are all non-nil.
type CredentialRecord struct {
	UserID       int64
	AccessToken  *string
	RefreshToken *string
	TokenExpiry  *time.Time
	SyncEnabled  bool
	AccountEmail *string
	LastSyncAt   *time.Time
}

// HasAccessToken reports whether the record is linked and carries an
// access token.
func (c CredentialRecord) HasAccessToken() bool {
	return c.SyncEnabled && c.AccessToken != nil
}

// HasRefreshToken reports whether the record is linked and carries a
// refresh token.
func (c CredentialRecord) HasRefreshToken() bool {
	return c.SyncEnabled && c.RefreshToken != nil
}

// CredentialUpdate is a partial update of a [CredentialRecord].
// A nil field is left untouched; a non-nil field is written. Token fields
// carry already encrypted values. Clearing the record is a separate
// operation and is never expressed through this type.
type CredentialUpdate struct {
	UserID       int64
	AccessToken  *string
	RefreshToken *string
	TokenExpiry  *time.Time
	SyncEnabled  *bool
	AccountEmail *string
	LastSyncAt   *time.Time
}

// IsEmpty reports whether the update would not change any column.
func (u CredentialUpdate) IsEmpty() bool {
	return u.AccessToken == nil &&
		u.RefreshToken == nil &&
		u.TokenExpiry == nil &&
		u.SyncEnabled == nil &&
		u.AccountEmail == nil &&
		u.LastSyncAt == nil
}

// TokenUpdate is the plaintext counterpart of the token part of
// [CredentialUpdate], used by the service layer before encryption.
// RefreshToken is nil when the provider did not rotate it.
type TokenUpdate struct {
	AccessToken  *string
	RefreshToken *string
	Expiry       *time.Time
}
