// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/utils"
	"github.com/MKhiriev/shift-calendar/models"
)

const (
	scopeCalendarEvents = "https://www.googleapis.com/auth/calendar.events"
	scopeUserinfoEmail  = "https://www.googleapis.com/auth/userinfo.email"

	defaultRevokeURL       = "https://oauth2.googleapis.com/revoke"
	defaultProviderTimeout = 10 * time.Second
)

// GoogleOption overrides the provider endpoints. Production code uses the
// defaults; tests point them at an httptest server.
type GoogleOption func(*googleEndpoints)

type googleEndpoints struct {
	oauth      oauth2.Endpoint
	revokeURL  string
	apiBaseURL string
}

// WithOAuthEndpoint replaces the authorization and token endpoints.
func WithOAuthEndpoint(authURL, tokenURL string) GoogleOption {
	return func(e *googleEndpoints) {
		e.oauth = oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
}

// WithRevokeURL replaces the token revocation endpoint.
func WithRevokeURL(revokeURL string) GoogleOption {
	return func(e *googleEndpoints) {
		e.revokeURL = revokeURL
	}
}

// WithAPIBaseURL replaces https://www.googleapis.com for the userinfo and
// calendar APIs.
func WithAPIBaseURL(baseURL string) GoogleOption {
	return func(e *googleEndpoints) {
		e.apiBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// googleOAuthProvider implements [OAuthProvider] on top of x/oauth2. Every
// outbound call goes through one resty-backed http.Client whose timeout is
// the configured provider timeout.
type googleOAuthProvider struct {
	oauthConfig *oauth2.Config
	client      *utils.HTTPClient
	timeout     time.Duration
	endpoints   googleEndpoints
	logger      *logger.Logger
}

func NewGoogleOAuthProvider(cfg config.Calendar, log *logger.Logger, opts ...GoogleOption) OAuthProvider {
	return newGoogleOAuthProvider(cfg, log, opts...)
}

func newGoogleOAuthProvider(cfg config.Calendar, log *logger.Logger, opts ...GoogleOption) *googleOAuthProvider {
	endpoints := googleEndpoints{
		oauth:     google.Endpoint,
		revokeURL: defaultRevokeURL,
	}
	for _, opt := range opts {
		opt(&endpoints)
	}

	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	client := utils.NewHTTPClient(timeout)

	return &googleOAuthProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.oauth,
			Scopes:       []string{scopeCalendarEvents, scopeUserinfoEmail},
		},
		client:    client,
		timeout:   timeout,
		endpoints: endpoints,
		logger:    log,
	}
}

func (p *googleOAuthProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *googleOAuthProvider) Exchange(ctx context.Context, code string) (models.ProviderToken, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.ProviderToken{}, mapTokenError(err)
	}

	return toProviderToken(token), nil
}

func (p *googleOAuthProvider) Refresh(ctx context.Context, refreshToken string) (models.ProviderToken, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	// a token without an access part is never valid, so this always refreshes
	source := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		return models.ProviderToken{}, mapTokenError(err)
	}

	result := toProviderToken(token)
	// x/oauth2 carries the old refresh token over when none is returned
	if result.RefreshToken == refreshToken {
		result.RefreshToken = ""
	}

	return result, nil
}

func (p *googleOAuthProvider) AccountEmail(ctx context.Context, accessToken string) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	opts := []option.ClientOption{option.WithHTTPClient(p.authorizedClient(ctx, accessToken))}
	if p.endpoints.apiBaseURL != "" {
		opts = append(opts, option.WithEndpoint(p.endpoints.apiBaseURL+"/"))
	}

	service, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating userinfo service: %w", err)
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: userinfo: %w", ErrProviderUnavailable, err)
	}

	return info.Email, nil
}

func (p *googleOAuthProvider) Revoke(ctx context.Context, token string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"token": token}).
		Post(p.endpoints.revokeURL)
	if err != nil {
		return fmt.Errorf("%w: revoke request: %w", ErrProviderUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (p *googleOAuthProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient())
	return context.WithTimeout(ctx, p.timeout)
}

func (p *googleOAuthProvider) httpClient() *http.Client {
	return p.client.GetClient()
}

func (p *googleOAuthProvider) authorizedClient(ctx context.Context, accessToken string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func toProviderToken(token *oauth2.Token) models.ProviderToken {
	return models.ProviderToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
}
