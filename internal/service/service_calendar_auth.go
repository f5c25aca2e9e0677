// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/shift-calendar/internal/adapter"
	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/locks"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/models"
)

// refreshBuffer is how far ahead of expiry an access token is refreshed.
const refreshBuffer = 5 * time.Minute

// calendarAuthService is the concrete implementation of CalendarAuthService.
//
// It keeps no per-user state in memory: whether a user is connected, valid
// or expiring is derived from the stored record on every call. Refreshes for
// one user are serialised with locker, and the record is read again once
// the lock is held so that only one caller talks to the provider.
type calendarAuthService struct {
	// tokens reads and writes the encrypted credential columns.
	tokens TokenStore

	// provider talks to the OAuth authorization server.
	provider adapter.OAuthProvider

	// locker guards the refresh critical section per user.
	locker locks.Locker

	metrics *metrics.Metrics

	// now is the clock used for expiry decisions.
	now func() time.Time

	logger *logger.Logger
}

func NewCalendarAuthService(
	tokens TokenStore,
	provider adapter.OAuthProvider,
	locker locks.Locker,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) CalendarAuthService {
	return &calendarAuthService{
		tokens:   tokens,
		provider: provider,
		locker:   locker,
		metrics:  metrics,
		now:      time.Now,
		logger:   logger,
	}
}

// GetValidAccessToken returns a decrypted access token whose expiry lies
// more than refreshBuffer in the future.
//
// Returns:
//   - ErrNotConnected if the user has no calendar link.
//   - ErrReauthRequired if the provider rejected the refresh token; the
//     credentials are cleared.
//   - ErrTransientRefresh if the provider could not be reached or the lock
//     could not be acquired; the credentials are untouched.
//   - crypto.ErrDecryption if a stored token is unreadable; the credentials
//     are cleared.
func (s *calendarAuthService) GetValidAccessToken(ctx context.Context, userID int64) (string, error) {
	token, expiry, err := s.tokens.LoadAccessToken(ctx, userID)
	if err != nil {
		return "", s.handleLoadError(ctx, userID, err)
	}
	if !s.needsRefresh(expiry) {
		s.metrics.RecordTokenRequest(metrics.RefreshNotNeeded)
		return token, nil
	}

	unlock, err := s.locker.Lock(ctx, refreshLockKey(userID))
	if err != nil {
		s.metrics.RecordTokenRequest(metrics.RefreshTransient)
		return "", fmt.Errorf("%w: %w", ErrTransientRefresh, err)
	}
	defer unlock()

	token, expiry, err = s.tokens.LoadAccessToken(ctx, userID)
	if err != nil {
		return "", s.handleLoadError(ctx, userID, err)
	}
	if !s.needsRefresh(expiry) {
		s.metrics.RecordTokenRequest(metrics.RefreshConcurrent)
		return token, nil
	}

	return s.refresh(ctx, userID)
}

// refresh must be called with the user's refresh lock held.
func (s *calendarAuthService) refresh(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx).ForUser(userID)

	refreshToken, err := s.tokens.LoadRefreshToken(ctx, userID)
	if err != nil {
		return "", s.handleLoadError(ctx, userID, err)
	}

	start := s.now()
	token, err := s.provider.Refresh(ctx, refreshToken)
	s.metrics.ObserveRefreshDuration(s.now().Sub(start))

	switch {
	case errors.Is(err, adapter.ErrInvalidGrant):
		log.Warn().Msg("refresh token rejected by provider, clearing credentials")
		if clearErr := s.tokens.ClearCredentials(ctx, userID); clearErr != nil {
			log.Err(clearErr).Msg("failed to clear rejected credentials")
		}
		s.metrics.RecordTokenRequest(metrics.RefreshReauth)
		return "", ErrReauthRequired
	case err != nil:
		log.Err(err).Msg("access token refresh failed")
		s.metrics.RecordTokenRequest(metrics.RefreshTransient)
		return "", fmt.Errorf("%w: %w", ErrTransientRefresh, err)
	case token.AccessToken == "":
		log.Error().Msg("provider returned an empty access token")
		s.metrics.RecordTokenRequest(metrics.RefreshTransient)
		return "", fmt.Errorf("%w: empty access token", ErrTransientRefresh)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = s.now().Add(defaultTokenLifetime)
	}

	update := models.TokenUpdate{AccessToken: &token.AccessToken, Expiry: &expiry}
	if token.RefreshToken != "" {
		update.RefreshToken = &token.RefreshToken
	}

	if err = s.tokens.SaveTokens(ctx, userID, update); err != nil {
		log.Err(err).Msg("failed to persist refreshed tokens")
		return "", err
	}

	log.Info().Time("expiry", expiry).Bool("rotated", update.RefreshToken != nil).Msg("access token refreshed")
	s.metrics.RecordTokenRequest(metrics.RefreshSuccess)

	return token.AccessToken, nil
}

// handleLoadError clears credentials that can no longer be decrypted.
func (s *calendarAuthService) handleLoadError(ctx context.Context, userID int64, err error) error {
	if !errors.Is(err, crypto.ErrDecryption) {
		return err
	}

	log := logger.FromContext(ctx).ForUser(userID)
	log.Error().Msg("stored credentials are corrupted, clearing")
	if clearErr := s.tokens.ClearCredentials(ctx, userID); clearErr != nil {
		log.Err(clearErr).Msg("failed to clear corrupted credentials")
	}
	s.metrics.RecordTokenRequest(metrics.RefreshDecryptFailed)

	return crypto.ErrDecryption
}

// needsRefresh reports whether expiry is unknown or within refreshBuffer.
func (s *calendarAuthService) needsRefresh(expiry time.Time) bool {
	return expiry.IsZero() || !expiry.After(s.now().Add(refreshBuffer))
}

// Connect exchanges an authorization code and stores the resulting link.
// Both an access token and a refresh token are required; otherwise
// ErrTokenExchange is returned and nothing is stored.
func (s *calendarAuthService) Connect(ctx context.Context, userID int64, authorizationCode string) (err error) {
	defer func() { s.metrics.RecordLinkOperation(metrics.OperationConnect, err) }()

	log := logger.FromContext(ctx).ForUser(userID)

	if authorizationCode == "" {
		return fmt.Errorf("%w: empty authorization code", ErrTokenExchange)
	}

	token, err := s.provider.Exchange(ctx, authorizationCode)
	if err != nil {
		log.Err(err).Msg("authorization code exchange failed")
		return fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if token.AccessToken == "" || token.RefreshToken == "" {
		log.Error().
			Bool("has_access_token", token.AccessToken != "").
			Bool("has_refresh_token", token.RefreshToken != "").
			Msg("provider returned an incomplete token pair")
		return fmt.Errorf("%w: incomplete token pair", ErrTokenExchange)
	}

	email, emailErr := s.provider.AccountEmail(ctx, token.AccessToken)
	if emailErr != nil {
		log.Warn().Err(emailErr).Msg("could not fetch calendar account email")
		email = ""
	}

	if err = s.tokens.SaveConnection(ctx, userID, token, email); err != nil {
		log.Err(err).Msg("failed to store calendar connection")
		return err
	}

	log.Info().Str("email", email).Msg("google calendar connected")
	return nil
}

// Disconnect revokes the stored refresh token on a best-effort basis and
// clears the credentials. Disconnecting a user that is not connected
// succeeds.
func (s *calendarAuthService) Disconnect(ctx context.Context, userID int64) (err error) {
	defer func() { s.metrics.RecordLinkOperation(metrics.OperationDisconnect, err) }()

	log := logger.FromContext(ctx).ForUser(userID)

	refreshToken, err := s.tokens.LoadRefreshToken(ctx, userID)
	switch {
	case err == nil:
		revokeErr := s.provider.Revoke(ctx, refreshToken)
		s.metrics.RecordLinkOperation(metrics.OperationRevoke, revokeErr)
		if revokeErr != nil {
			log.Warn().Err(revokeErr).Msg("refresh token revocation failed")
		}
	case errors.Is(err, ErrNotConnected), errors.Is(err, crypto.ErrDecryption):
		log.Debug().Err(err).Msg("nothing to revoke")
	default:
		return err
	}

	if err = s.tokens.ClearCredentials(ctx, userID); err != nil {
		log.Err(err).Msg("failed to clear calendar credentials")
		return err
	}

	log.Info().Msg("google calendar disconnected")
	return nil
}

func (s *calendarAuthService) AuthCodeURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// Status reports the link state without decrypting anything.
func (s *calendarAuthService) Status(ctx context.Context, userID int64) (models.CalendarStatus, error) {
	record, err := s.tokens.LoadRecord(ctx, userID)
	if errors.Is(err, ErrNotConnected) {
		return models.CalendarStatus{}, nil
	}
	if err != nil {
		return models.CalendarStatus{}, err
	}

	status := models.CalendarStatus{
		Connected:   record.HasRefreshToken(),
		SyncEnabled: record.SyncEnabled,
		LastSync:    record.LastSyncAt,
	}
	if record.AccountEmail != nil {
		status.Email = *record.AccountEmail
	}
	// an unknown expiry is not reported as expired; GetValidAccessToken
	// still refreshes it
	if status.Connected && record.TokenExpiry != nil {
		status.IsTokenExpired = record.TokenExpiry.Before(s.now())
	}

	return status, nil
}

func refreshLockKey(userID int64) string {
	return "calendar-refresh:" + strconv.FormatInt(userID, 10)
}
