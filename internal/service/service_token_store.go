// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/store"
	"github.com/MKhiriev/shift-calendar/models"
)

// defaultTokenLifetime is assumed when the provider does not report an expiry.
const defaultTokenLifetime = time.Hour

type tokenStore struct {
	credentials store.CredentialRepository
	cipher      crypto.SecretCipher
	now         func() time.Time

	logger *logger.Logger
}

func NewTokenStore(credentials store.CredentialRepository, cipher crypto.SecretCipher, logger *logger.Logger) TokenStore {
	return &tokenStore{
		credentials: credentials,
		cipher:      cipher,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *tokenStore) LoadRecord(ctx context.Context, userID int64) (models.CredentialRecord, error) {
	record, err := s.credentials.GetCredentials(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.CredentialRecord{}, ErrNotConnected
	}
	if err != nil {
		return models.CredentialRecord{}, fmt.Errorf("load credentials: %w", err)
	}

	return record, nil
}

func (s *tokenStore) LoadAccessToken(ctx context.Context, userID int64) (string, time.Time, error) {
	record, err := s.LoadRecord(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !record.HasAccessToken() {
		return "", time.Time{}, ErrNotConnected
	}

	token, err := s.cipher.Decrypt(*record.AccessToken)
	if err != nil {
		logger.FromContext(ctx).Error().Int64("user_id", userID).Msg("stored access token failed to decrypt")
		return "", time.Time{}, crypto.ErrDecryption
	}

	var expiry time.Time
	if record.TokenExpiry != nil {
		expiry = *record.TokenExpiry
	}

	return token, expiry, nil
}

func (s *tokenStore) LoadRefreshToken(ctx context.Context, userID int64) (string, error) {
	record, err := s.LoadRecord(ctx, userID)
	if err != nil {
		return "", err
	}
	if !record.HasRefreshToken() {
		return "", ErrNotConnected
	}

	token, err := s.cipher.Decrypt(*record.RefreshToken)
	if err != nil {
		logger.FromContext(ctx).Error().Int64("user_id", userID).Msg("stored refresh token failed to decrypt")
		return "", crypto.ErrDecryption
	}

	return token, nil
}

func (s *tokenStore) SaveTokens(ctx context.Context, userID int64, update models.TokenUpdate) error {
	credentialUpdate := models.CredentialUpdate{UserID: userID, TokenExpiry: update.Expiry}

	if update.AccessToken != nil {
		encrypted, err := s.cipher.Encrypt(*update.AccessToken)
		if err != nil {
			return fmt.Errorf("encrypt access token: %w", err)
		}
		credentialUpdate.AccessToken = &encrypted
	}
	if update.RefreshToken != nil && *update.RefreshToken != "" {
		encrypted, err := s.cipher.Encrypt(*update.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
		credentialUpdate.RefreshToken = &encrypted
	}

	if credentialUpdate.IsEmpty() {
		return ErrInvalidDataProvided
	}

	if err := s.credentials.UpdateCredentials(ctx, credentialUpdate); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	return nil
}

func (s *tokenStore) SaveConnection(ctx context.Context, userID int64, token models.ProviderToken, accountEmail string) error {
	if token.AccessToken == "" || token.RefreshToken == "" {
		return ErrInvalidDataProvided
	}

	encryptedAccess, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	encryptedRefresh, err := s.cipher.Encrypt(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	now := s.now()
	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = now.Add(defaultTokenLifetime)
	}
	syncEnabled := true

	err = s.credentials.UpdateCredentials(ctx, models.CredentialUpdate{
		UserID:       userID,
		AccessToken:  &encryptedAccess,
		RefreshToken: &encryptedRefresh,
		TokenExpiry:  &expiry,
		SyncEnabled:  &syncEnabled,
		AccountEmail: &accountEmail,
		LastSyncAt:   &now,
	})
	if err != nil {
		return fmt.Errorf("save connection: %w", err)
	}

	return nil
}

// ClearCredentials succeeds for a record that is already cleared. An
// unknown user has nothing to clear.
func (s *tokenStore) ClearCredentials(ctx context.Context, userID int64) error {
	err := s.credentials.ClearCredentials(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		logger.FromContext(ctx).Warn().Int64("user_id", userID).Msg("clear credentials for unknown user")
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	return nil
}
