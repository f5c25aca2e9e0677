// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/service"
	"github.com/MKhiriev/shift-calendar/internal/store"
	"github.com/MKhiriev/shift-calendar/models"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	router, deps := newTestRouter(t)
	expires := time.Now().Add(time.Hour)

	gomock.InOrder(
		deps.auth.EXPECT().RegisterUser(gomock.Any(), models.User{Login: "nurse", Password: "pw"}).
			Return(models.User{UserID: 5, Login: "nurse"}, nil),
		deps.auth.EXPECT().CreateToken(gomock.Any(), models.User{UserID: 5, Login: "nurse"}).
			Return(models.Token{SignedString: "jwt", UserID: 5, ExpiresAt: expires}, nil),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(`{"login":"nurse","password":"pw"}`))
	rec := serve(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer jwt", rec.Header().Get("Authorization"))

	cookie := findCookie(rec, sessionCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, "jwt", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "invalid data", body: `{}`, serviceErr: service.ErrInvalidDataProvided, wantStatus: http.StatusBadRequest},
		{name: "login taken", body: `{"login":"a","password":"b"}`, serviceErr: store.ErrLoginAlreadyExists, wantStatus: http.StatusConflict},
		{name: "unexpected", body: `{"login":"a","password":"b"}`, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := newTestRouter(t)
			if tt.serviceErr != nil {
				deps.auth.EXPECT().RegisterUser(gomock.Any(), gomock.Any()).Return(models.User{}, tt.serviceErr)
			}

			rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Nil(t, findCookie(rec, sessionCookie))
		})
	}
}

func TestLogin_SecureCookie(t *testing.T) {
	h, deps := newTestHandler(t, &config.StructuredConfig{App: config.App{SecureCookies: true}})
	router := h.Init()

	deps.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.User{UserID: 5}, nil)
	deps.auth.EXPECT().CreateToken(gomock.Any(), gomock.Any()).Return(models.Token{SignedString: "jwt"}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"a","password":"b"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(rec, sessionCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "wrong password", serviceErr: service.ErrWrongPassword, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", serviceErr: store.ErrNoUserWasFound, wantStatus: http.StatusUnauthorized},
		{name: "invalid data", serviceErr: service.ErrInvalidDataProvided, wantStatus: http.StatusBadRequest},
		{name: "unexpected", serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := newTestRouter(t)
			deps.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.User{}, tt.serviceErr)

			rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"a","password":"b"}`)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLogin_TokenCreationFails(t *testing.T) {
	router, deps := newTestRouter(t)
	deps.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.User{UserID: 5}, nil)
	deps.auth.EXPECT().CreateToken(gomock.Any(), gomock.Any()).Return(models.Token{}, service.ErrTokenCreationFailed)

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"a","password":"b"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Authorization"))
}
