// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/shift-calendar/internal/adapter"
	"github.com/MKhiriev/shift-calendar/internal/crypto"
	"github.com/MKhiriev/shift-calendar/internal/locks"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/metrics"
	"github.com/MKhiriev/shift-calendar/internal/mock"
	"github.com/MKhiriev/shift-calendar/models"
)

type calendarAuthFixture struct {
	svc      *calendarAuthService
	tokens   *mock.MockTokenStore
	provider *mock.MockOAuthProvider
	metrics  *metrics.Metrics
}

func newCalendarAuthFixture(t *testing.T) calendarAuthFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	tokens := mock.NewMockTokenStore(ctrl)
	provider := mock.NewMockOAuthProvider(ctrl)
	m := metrics.NewMetrics("test")

	svc := NewCalendarAuthService(tokens, provider, locks.NewMemoryLocker(), m, logger.Nop()).(*calendarAuthService)
	svc.now = func() time.Time { return fixedNow }

	return calendarAuthFixture{svc: svc, tokens: tokens, provider: provider, metrics: m}
}

func (f calendarAuthFixture) refreshCount(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.TokenRefreshes.WithLabelValues(outcome))
}

// ── GetValidAccessToken ──────────────────────────────────────────────────────

func TestGetValidAccessToken_ValidTokenIsReturnedWithoutRefresh(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).
		Return("current", fixedNow.Add(5*time.Minute+time.Second), nil)

	token, err := f.svc.GetValidAccessToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "current", token)
	assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshNotNeeded))
}

func TestGetValidAccessToken_RefreshesInsideBuffer(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Time
	}{
		{name: "exactly at buffer", expiry: fixedNow.Add(refreshBuffer)},
		{name: "inside buffer", expiry: fixedNow.Add(time.Minute)},
		{name: "already expired", expiry: fixedNow.Add(-time.Hour)},
		{name: "unknown expiry", expiry: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCalendarAuthFixture(t)
			newExpiry := fixedNow.Add(time.Hour)

			gomock.InOrder(
				f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", tt.expiry, nil).Times(2),
				f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("refresh", nil),
				f.provider.EXPECT().Refresh(gomock.Any(), "refresh").
					Return(models.ProviderToken{AccessToken: "fresh", Expiry: newExpiry}, nil),
				f.tokens.EXPECT().SaveTokens(gomock.Any(), int64(1), models.TokenUpdate{
					AccessToken: ptr("fresh"),
					Expiry:      &newExpiry,
				}).Return(nil),
			)

			token, err := f.svc.GetValidAccessToken(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, "fresh", token)
			assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshSuccess))
		})
	}
}

func TestGetValidAccessToken_RotatedRefreshTokenIsStored(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("refresh", nil)
	f.provider.EXPECT().Refresh(gomock.Any(), "refresh").
		Return(models.ProviderToken{AccessToken: "fresh", RefreshToken: "rotated", Expiry: fixedNow.Add(time.Hour)}, nil)
	f.tokens.EXPECT().SaveTokens(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, u models.TokenUpdate) error {
			require.NotNil(t, u.RefreshToken)
			assert.Equal(t, "rotated", *u.RefreshToken)
			return nil
		})

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	require.NoError(t, err)
}

func TestGetValidAccessToken_MissingProviderExpiryDefaultsToOneHour(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("refresh", nil)
	f.provider.EXPECT().Refresh(gomock.Any(), "refresh").Return(models.ProviderToken{AccessToken: "fresh"}, nil)
	f.tokens.EXPECT().SaveTokens(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, u models.TokenUpdate) error {
			require.NotNil(t, u.Expiry)
			assert.True(t, fixedNow.Add(time.Hour).Equal(*u.Expiry))
			assert.Nil(t, u.RefreshToken)
			return nil
		})

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	require.NoError(t, err)
}

func TestGetValidAccessToken_InvalidGrantClearsCredentials(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("revoked", nil)
	f.provider.EXPECT().Refresh(gomock.Any(), "revoked").Return(models.ProviderToken{}, adapter.ErrInvalidGrant)
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(1)).Return(nil)

	token, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshReauth))
}

func TestGetValidAccessToken_TransientFailureKeepsCredentials(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("refresh", nil)
	f.provider.EXPECT().Refresh(gomock.Any(), "refresh").
		Return(models.ProviderToken{}, adapter.ErrProviderUnavailable).Times(1)
	// no ClearCredentials and no SaveTokens expected

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTransientRefresh)
	assert.ErrorIs(t, err, adapter.ErrProviderUnavailable)
	assert.NotErrorIs(t, err, ErrReauthRequired)
	assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshTransient))
}

func TestGetValidAccessToken_EmptyAccessTokenIsTransient(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("refresh", nil)
	f.provider.EXPECT().Refresh(gomock.Any(), "refresh").Return(models.ProviderToken{}, nil)

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTransientRefresh)
}

func TestGetValidAccessToken_NotConnected(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("", time.Time{}, ErrNotConnected)

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetValidAccessToken_CorruptedAccessTokenClearsCredentials(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("", time.Time{}, crypto.ErrDecryption)
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(1)).Return(nil)

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, crypto.ErrDecryption)
	assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshDecryptFailed))
}

func TestGetValidAccessToken_CorruptedRefreshTokenClearsCredentials(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil).Times(2)
	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(1)).Return("", crypto.ErrDecryption)
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(1)).Return(nil)

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, crypto.ErrDecryption)
}

func TestGetValidAccessToken_RefreshedWhileWaitingForLock(t *testing.T) {
	f := newCalendarAuthFixture(t)

	gomock.InOrder(
		f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", fixedNow, nil),
		f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("fresh", fixedNow.Add(time.Hour), nil),
	)

	token, err := f.svc.GetValidAccessToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1.0, f.refreshCount(metrics.RefreshConcurrent))
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string) (locks.Unlock, error) {
	return nil, locks.ErrLockNotAcquired
}

func (failingLocker) Close() error { return nil }

func TestGetValidAccessToken_LockUnavailableIsTransient(t *testing.T) {
	f := newCalendarAuthFixture(t)
	f.svc.locker = failingLocker{}

	f.tokens.EXPECT().LoadAccessToken(gomock.Any(), int64(1)).Return("old", time.Time{}, nil)

	_, err := f.svc.GetValidAccessToken(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTransientRefresh)
	assert.ErrorIs(t, err, locks.ErrLockNotAcquired)
}

// memoryTokenStore is a TokenStore over a single in-memory record, used to
// exercise the refresh lock with real goroutines.
type memoryTokenStore struct {
	mu      sync.Mutex
	access  string
	refresh string
	expiry  time.Time
	saves   int
}

func (m *memoryTokenStore) LoadAccessToken(context.Context, int64) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.expiry, nil
}

func (m *memoryTokenStore) LoadRefreshToken(context.Context, int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, nil
}

func (m *memoryTokenStore) LoadRecord(context.Context, int64) (models.CredentialRecord, error) {
	return models.CredentialRecord{}, nil
}

func (m *memoryTokenStore) SaveTokens(_ context.Context, _ int64, u models.TokenUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = *u.AccessToken
	m.expiry = *u.Expiry
	m.saves++
	return nil
}

func (m *memoryTokenStore) SaveConnection(context.Context, int64, models.ProviderToken, string) error {
	return nil
}

func (m *memoryTokenStore) ClearCredentials(context.Context, int64) error { return nil }

func TestGetValidAccessToken_ConcurrentCallersRefreshOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mock.NewMockOAuthProvider(ctrl)
	tokens := &memoryTokenStore{access: "old", refresh: "refresh", expiry: fixedNow}

	var calls atomic.Int32
	provider.EXPECT().Refresh(gomock.Any(), "refresh").DoAndReturn(
		func(context.Context, string) (models.ProviderToken, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return models.ProviderToken{AccessToken: "fresh", Expiry: fixedNow.Add(time.Hour)}, nil
		}).Times(1)

	svc := NewCalendarAuthService(tokens, provider, locks.NewMemoryLocker(), metrics.NewMetrics("test"), logger.Nop()).(*calendarAuthService)
	svc.now = func() time.Time { return fixedNow }

	const callers = 8
	results := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.GetValidAccessToken(context.Background(), 1)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh", results[i])
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, tokens.saves)
}

// ── Connect ──────────────────────────────────────────────────────────────────

func TestConnect_StoresCompleteTokenPair(t *testing.T) {
	f := newCalendarAuthFixture(t)
	token := models.ProviderToken{AccessToken: "a", RefreshToken: "r", Expiry: fixedNow.Add(time.Hour)}

	gomock.InOrder(
		f.provider.EXPECT().Exchange(gomock.Any(), "code-123").Return(token, nil),
		f.provider.EXPECT().AccountEmail(gomock.Any(), "a").Return("nurse@example.com", nil),
		f.tokens.EXPECT().SaveConnection(gomock.Any(), int64(7), token, "nurse@example.com").Return(nil),
	)

	require.NoError(t, f.svc.Connect(context.Background(), 7, "code-123"))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.CalendarLinkOperations.WithLabelValues(metrics.OperationConnect, metrics.OutcomeSuccess)))
}

func TestConnect_EmailFailureStoresEmptyEmail(t *testing.T) {
	f := newCalendarAuthFixture(t)
	token := models.ProviderToken{AccessToken: "a", RefreshToken: "r"}

	f.provider.EXPECT().Exchange(gomock.Any(), "code").Return(token, nil)
	f.provider.EXPECT().AccountEmail(gomock.Any(), "a").Return("", adapter.ErrProviderUnavailable)
	f.tokens.EXPECT().SaveConnection(gomock.Any(), int64(7), token, "").Return(nil)

	require.NoError(t, f.svc.Connect(context.Background(), 7, "code"))
}

func TestConnect_IncompleteTokenPair(t *testing.T) {
	tests := []struct {
		name  string
		token models.ProviderToken
	}{
		{name: "no refresh token", token: models.ProviderToken{AccessToken: "a"}},
		{name: "no access token", token: models.ProviderToken{RefreshToken: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCalendarAuthFixture(t)
			f.provider.EXPECT().Exchange(gomock.Any(), "code").Return(tt.token, nil)

			err := f.svc.Connect(context.Background(), 7, "code")
			assert.ErrorIs(t, err, ErrTokenExchange)
		})
	}
}

func TestConnect_ExchangeFailure(t *testing.T) {
	f := newCalendarAuthFixture(t)
	f.provider.EXPECT().Exchange(gomock.Any(), "used-code").Return(models.ProviderToken{}, adapter.ErrInvalidGrant)

	err := f.svc.Connect(context.Background(), 7, "used-code")
	assert.ErrorIs(t, err, ErrTokenExchange)
	assert.ErrorIs(t, err, adapter.ErrInvalidGrant)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.CalendarLinkOperations.WithLabelValues(metrics.OperationConnect, metrics.OutcomeFailure)))
}

func TestConnect_EmptyCode(t *testing.T) {
	f := newCalendarAuthFixture(t)

	assert.ErrorIs(t, f.svc.Connect(context.Background(), 7, ""), ErrTokenExchange)
}

// ── Disconnect ───────────────────────────────────────────────────────────────

func TestDisconnect_RevokesAndClears(t *testing.T) {
	f := newCalendarAuthFixture(t)

	gomock.InOrder(
		f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(8)).Return("refresh", nil),
		f.provider.EXPECT().Revoke(gomock.Any(), "refresh").Return(nil),
		f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(8)).Return(nil),
	)

	require.NoError(t, f.svc.Disconnect(context.Background(), 8))
}

func TestDisconnect_RevocationFailureIsIgnored(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(8)).Return("refresh", nil)
	f.provider.EXPECT().Revoke(gomock.Any(), "refresh").Return(errors.New("timeout"))
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(8)).Return(nil)

	require.NoError(t, f.svc.Disconnect(context.Background(), 8))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.CalendarLinkOperations.WithLabelValues(metrics.OperationRevoke, metrics.OutcomeFailure)))
}

func TestDisconnect_NotConnectedIsIdempotent(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(8)).Return("", ErrNotConnected).Times(2)
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(8)).Return(nil).Times(2)

	require.NoError(t, f.svc.Disconnect(context.Background(), 8))
	require.NoError(t, f.svc.Disconnect(context.Background(), 8))
}

func TestDisconnect_CorruptedTokenStillClears(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(8)).Return("", crypto.ErrDecryption)
	f.tokens.EXPECT().ClearCredentials(gomock.Any(), int64(8)).Return(nil)

	require.NoError(t, f.svc.Disconnect(context.Background(), 8))
}

func TestDisconnect_StorageError(t *testing.T) {
	f := newCalendarAuthFixture(t)
	dbErr := errors.New("connection reset")

	f.tokens.EXPECT().LoadRefreshToken(gomock.Any(), int64(8)).Return("", dbErr)

	assert.ErrorIs(t, f.svc.Disconnect(context.Background(), 8), dbErr)
}

// ── Status / AuthCodeURL ─────────────────────────────────────────────────────

func TestStatus_Connected(t *testing.T) {
	f := newCalendarAuthFixture(t)
	expired := fixedNow.Add(-time.Minute)
	lastSync := fixedNow.Add(-24 * time.Hour)

	f.tokens.EXPECT().LoadRecord(gomock.Any(), int64(9)).Return(models.CredentialRecord{
		AccessToken:  ptr("enc-a"),
		RefreshToken: ptr("enc-r"),
		TokenExpiry:  &expired,
		SyncEnabled:  true,
		AccountEmail: ptr("nurse@example.com"),
		LastSyncAt:   &lastSync,
	}, nil)

	status, err := f.svc.Status(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, models.CalendarStatus{
		Connected:      true,
		SyncEnabled:    true,
		Email:          "nurse@example.com",
		LastSync:       &lastSync,
		IsTokenExpired: true,
	}, status)
}

func TestStatus_TokenExpiry(t *testing.T) {
	tests := []struct {
		name        string
		expiry      *time.Time
		wantExpired bool
	}{
		{name: "unknown expiry", expiry: nil, wantExpired: false},
		{name: "expires now", expiry: ptr(fixedNow), wantExpired: false},
		{name: "expired a second ago", expiry: ptr(fixedNow.Add(-time.Second)), wantExpired: true},
		{name: "valid for an hour", expiry: ptr(fixedNow.Add(time.Hour)), wantExpired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCalendarAuthFixture(t)

			f.tokens.EXPECT().LoadRecord(gomock.Any(), int64(9)).Return(models.CredentialRecord{
				AccessToken:  ptr("enc-a"),
				RefreshToken: ptr("enc-r"),
				TokenExpiry:  tt.expiry,
				SyncEnabled:  tt.expiry != nil,
			}, nil)

			status, err := f.svc.Status(context.Background(), 9)
			require.NoError(t, err)
			assert.True(t, status.Connected)
			assert.Equal(t, tt.wantExpired, status.IsTokenExpired)
		})
	}
}

func TestStatus_NotConnected(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.tokens.EXPECT().LoadRecord(gomock.Any(), int64(9)).Return(models.CredentialRecord{}, ErrNotConnected)

	status, err := f.svc.Status(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.False(t, status.IsTokenExpired)
}

func TestAuthCodeURL_Delegates(t *testing.T) {
	f := newCalendarAuthFixture(t)

	f.provider.EXPECT().AuthCodeURL("state-abc").Return("https://accounts.example/auth?state=state-abc")

	assert.Equal(t, "https://accounts.example/auth?state=state-abc", f.svc.AuthCodeURL("state-abc"))
}
