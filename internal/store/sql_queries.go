// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/shift-calendar/models"
)

const (
	usersTable = "users"

	colUserID       = "user_id"
	colLogin        = "login"
	colPasswordHash = "password_hash"
	colName         = "name"
	colCreatedAt    = "created_at"
	colUpdatedAt    = "updated_at"

	colAccessToken   = "google_access_token"
	colRefreshToken  = "google_refresh_token"
	colTokenExpiry   = "google_token_expiry"
	colSyncEnabled   = "google_calendar_sync_enabled"
	colCalendarEmail = "google_calendar_email"
	colLastSync      = "google_calendar_last_sync"
)

// credentialColumns is the scan order used by buildGetCredentialsQuery.
var credentialColumns = []string{
	colAccessToken,
	colRefreshToken,
	colTokenExpiry,
	colSyncEnabled,
	colCalendarEmail,
	colLastSync,
}

func buildCreateUserQuery(b sq.StatementBuilderType, user models.User) (string, []any, error) {
	query, args, err := b.
		Insert(usersTable).
		Columns(colLogin, colPasswordHash, colName).
		Values(user.Login, user.PasswordHash, user.Name).
		Suffix("RETURNING " + colUserID + ", " + colCreatedAt).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildFindUserByLoginQuery(b sq.StatementBuilderType, login string) (string, []any, error) {
	query, args, err := b.
		Select(colUserID, colLogin, colPasswordHash, colName, colCreatedAt).
		From(usersTable).
		Where(sq.Eq{colLogin: login}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetCredentialsQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	query, args, err := b.
		Select(append([]string{colUserID}, credentialColumns...)...).
		From(usersTable).
		Where(sq.Eq{colUserID: userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildUpdateCredentialsQuery sets only the non-nil fields of update.
func buildUpdateCredentialsQuery(b sq.StatementBuilderType, update models.CredentialUpdate) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, ErrEmptyCredentialUpdate
	}

	set := sq.Eq{}
	if update.AccessToken != nil {
		set[colAccessToken] = *update.AccessToken
	}
	if update.RefreshToken != nil {
		set[colRefreshToken] = *update.RefreshToken
	}
	if update.TokenExpiry != nil {
		set[colTokenExpiry] = update.TokenExpiry.UTC()
	}
	if update.SyncEnabled != nil {
		set[colSyncEnabled] = *update.SyncEnabled
	}
	if update.AccountEmail != nil {
		set[colCalendarEmail] = *update.AccountEmail
	}
	if update.LastSyncAt != nil {
		set[colLastSync] = update.LastSyncAt.UTC()
	}

	query, args, err := b.
		Update(usersTable).
		SetMap(set).
		Set(colUpdatedAt, sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{colUserID: update.UserID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildClearCredentialsQuery nulls every credential column in one statement.
func buildClearCredentialsQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	query, args, err := b.
		Update(usersTable).
		Set(colAccessToken, nil).
		Set(colRefreshToken, nil).
		Set(colTokenExpiry, nil).
		Set(colSyncEnabled, false).
		Set(colCalendarEmail, nil).
		Set(colLastSync, nil).
		Set(colUpdatedAt, sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{colUserID: userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
