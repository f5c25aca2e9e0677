// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

const (
	DefaultHTTPAddress     = ":8080"
	DefaultDBDriver        = DriverPostgres
	DefaultTokenIssuer     = "shift-calendar"
	DefaultTokenDuration   = 24 * time.Hour
	DefaultRequestTimeout  = 30 * time.Second
	DefaultSettingsURL     = "/settings/google-calendar"
	DefaultProviderTimeout = 10 * time.Second
	DefaultRefreshLockTTL  = 30 * time.Second
)

// Supported database drivers.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   DefaultTokenIssuer,
			TokenDuration: DefaultTokenDuration,
		},
		Storage: Storage{
			DB: DB{Driver: DefaultDBDriver},
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Calendar: Calendar{
			SettingsURL:     DefaultSettingsURL,
			ProviderTimeout: DefaultProviderTimeout,
			RefreshLockTTL:  DefaultRefreshLockTTL,
		},
	}
}
