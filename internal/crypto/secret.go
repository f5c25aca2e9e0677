// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/hex"
	"strings"
)

const (
	ivLength      = 16
	authTagLength = 16
	keyLength     = 32

	secretSeparator = ":"
)

// EncryptedSecret is one AES-256-GCM sealed value split into its parts.
type EncryptedSecret struct {
	IV         []byte
	AuthTag    []byte
	Ciphertext []byte
}

// String serializes the secret as "iv:authTag:ciphertext", each segment
// hex encoded.
func (s EncryptedSecret) String() string {
	return hex.EncodeToString(s.IV) + secretSeparator +
		hex.EncodeToString(s.AuthTag) + secretSeparator +
		hex.EncodeToString(s.Ciphertext)
}

// ParseEncryptedSecret is the inverse of [EncryptedSecret.String]. It
// requires exactly three segments, valid hex in each of them, and a
// 16-byte IV and tag. It returns [ErrDecryption] otherwise.
func ParseEncryptedSecret(serialized string) (EncryptedSecret, error) {
	parts := strings.Split(serialized, secretSeparator)
	if len(parts) != 3 {
		return EncryptedSecret{}, ErrDecryption
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLength {
		return EncryptedSecret{}, ErrDecryption
	}

	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != authTagLength {
		return EncryptedSecret{}, ErrDecryption
	}

	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return EncryptedSecret{}, ErrDecryption
	}

	return EncryptedSecret{IV: iv, AuthTag: tag, Ciphertext: ciphertext}, nil
}
