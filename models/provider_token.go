// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ProviderToken is the plaintext token set returned by the external OAuth
// provider. RefreshToken is empty when the provider did not issue one and
// Expiry is zero when the provider did not report it.
type ProviderToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}
