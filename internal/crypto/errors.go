// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	// ErrConfiguration is returned when the encryption key is missing or is
	// not exactly 64 hexadecimal characters. It is fatal at start-up.
	ErrConfiguration = errors.New("encryption key must be 64 hex characters (32 bytes)")

	// ErrDecryption is returned for every decryption failure. Malformed
	// input and authentication failures are deliberately indistinguishable.
	ErrDecryption = errors.New("failed to decrypt secret")

	// ErrEncryption is returned when sealing a secret fails, which in
	// practice only happens when the system random source is unavailable.
	ErrEncryption = errors.New("failed to encrypt secret")
)
