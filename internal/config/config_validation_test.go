// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/shift-calendar/internal/crypto"
)

func validConfig() *StructuredConfig {
	cfg := defaultConfig()
	cfg.App.TokenSignKey = "sign"
	cfg.Storage.DB.DSN = "postgres://localhost/db"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "valid without calendar", mutate: func(*StructuredConfig) {}},
		{
			name: "valid with calendar",
			mutate: func(cfg *StructuredConfig) {
				cfg.Calendar.ClientID = "cid"
				cfg.Calendar.ClientSecret = "secret"
				cfg.Calendar.RedirectURL = "http://localhost/cb"
				cfg.Calendar.EncryptionKey = testEncryptionKey
			},
		},
		{
			name:    "empty DSN",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "unknown driver",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.Driver = "mysql" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "missing sign key",
			mutate:  func(cfg *StructuredConfig) { cfg.App.TokenSignKey = "" },
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name: "no listeners",
			mutate: func(cfg *StructuredConfig) {
				cfg.Server.HTTPAddress = ""
				cfg.Server.GRPCAddress = ""
			},
			wantErr: ErrInvalidServerConfigs,
		},
		{
			name: "calendar without secret",
			mutate: func(cfg *StructuredConfig) {
				cfg.Calendar.ClientID = "cid"
				cfg.Calendar.RedirectURL = "http://localhost/cb"
				cfg.Calendar.EncryptionKey = testEncryptionKey
			},
			wantErr: ErrInvalidCalendarConfigs,
		},
		{
			name: "calendar with missing key",
			mutate: func(cfg *StructuredConfig) {
				cfg.Calendar.ClientID = "cid"
				cfg.Calendar.ClientSecret = "secret"
				cfg.Calendar.RedirectURL = "http://localhost/cb"
			},
			wantErr: crypto.ErrConfiguration,
		},
		{
			name: "calendar with non-hex key",
			mutate: func(cfg *StructuredConfig) {
				cfg.Calendar.ClientID = "cid"
				cfg.Calendar.ClientSecret = "secret"
				cfg.Calendar.RedirectURL = "http://localhost/cb"
				cfg.Calendar.EncryptionKey = "zz" + testEncryptionKey[2:]
			},
			wantErr: crypto.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
