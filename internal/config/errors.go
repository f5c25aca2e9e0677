// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates a missing DSN or an unsupported
	// database driver.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates a missing token sign key or a
	// non-positive token duration.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidServerConfigs indicates that no listener address is set.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidCalendarConfigs indicates an enabled calendar integration
	// with missing client settings or a malformed encryption key.
	ErrInvalidCalendarConfigs = errors.New("invalid calendar configuration")
	// ErrUnsupportedConfigFile is returned for config files that are
	// neither .json nor .yaml/.yml.
	ErrUnsupportedConfigFile = errors.New("unsupported config file extension")
)
