// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/models"
)

// credentialRepository stores calendar credentials in the credential
// columns of the "users" table. It never sees plaintext tokens.
type credentialRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

func (r *credentialRepository) GetCredentials(ctx context.Context, userID int64) (models.CredentialRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetCredentialsQuery(r.db.builder, userID)
	if err != nil {
		return models.CredentialRecord{}, err
	}

	var (
		record                    models.CredentialRecord
		accessToken, refreshToken sql.NullString
		accountEmail              sql.NullString
		tokenExpiry, lastSyncAt   sql.NullTime
	)
	err = r.db.withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(
			&record.UserID,
			&accessToken,
			&refreshToken,
			&tokenExpiry,
			&record.SyncEnabled,
			&accountEmail,
			&lastSyncAt,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.CredentialRecord{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "credentialRepository.GetCredentials").
			Int64("user_id", userID).
			Msg("failed to load credentials")
		return models.CredentialRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	record.AccessToken = nullStringPtr(accessToken)
	record.RefreshToken = nullStringPtr(refreshToken)
	record.AccountEmail = nullStringPtr(accountEmail)
	record.TokenExpiry = nullTimePtr(tokenExpiry)
	record.LastSyncAt = nullTimePtr(lastSyncAt)

	return record, nil
}

func (r *credentialRepository) UpdateCredentials(ctx context.Context, update models.CredentialUpdate) error {
	query, args, err := buildUpdateCredentialsQuery(r.db.builder, update)
	if err != nil {
		return err
	}

	return r.exec(ctx, "credentialRepository.UpdateCredentials", update.UserID, query, args)
}

func (r *credentialRepository) ClearCredentials(ctx context.Context, userID int64) error {
	query, args, err := buildClearCredentialsQuery(r.db.builder, userID)
	if err != nil {
		return err
	}

	return r.exec(ctx, "credentialRepository.ClearCredentials", userID, query, args)
}

// exec runs a single-row UPDATE and maps zero affected rows to
// [ErrNoUserWasFound].
func (r *credentialRepository) exec(ctx context.Context, funcName string, userID int64, query string, args []any) error {
	log := logger.FromContext(ctx)

	var result sql.Result
	err := r.db.withRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("user_id", userID).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
