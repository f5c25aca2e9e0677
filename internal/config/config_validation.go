// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/MKhiriev/shift-calendar/internal/crypto"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// A calendar integration with a missing or malformed encryption key is a
// start-up error: the feature must not come up half-configured.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs)
	}
	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenDuration <= 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Calendar.Enabled() {
		if cfg.Calendar.ClientSecret == "" || cfg.Calendar.RedirectURL == "" {
			return fmt.Errorf("%w: client secret and redirect URL are required", ErrInvalidCalendarConfigs)
		}
		if _, err := crypto.ParseKey(cfg.Calendar.EncryptionKey); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCalendarConfigs, err)
		}
	}

	return nil
}
