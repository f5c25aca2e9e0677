// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto holds the server-side symmetric encryption used to keep
// third-party OAuth tokens encrypted at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// cipherBox is the AES-256-GCM implementation of [SecretCipher].
//
// The AEAD is built once in the constructor; cipher.AEAD values are safe
// for concurrent use, so a single cipherBox is shared by all requests.
type cipherBox struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewCipherBox builds a [SecretCipher] from a 64-character hex key
// (32 bytes, AES-256). The GCM instance uses a 16-byte nonce and a
// 16-byte tag so that stored values keep the "iv:authTag:ciphertext"
// layout with a 128-bit IV.
//
// Returns [ErrConfiguration] if hexKey is empty, has the wrong length, or
// is not valid hex.
func NewCipherBox(hexKey string) (SecretCipher, error) {
	key, err := ParseKey(hexKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &cipherBox{aead: aead, rand: rand.Reader}, nil
}

// ParseKey decodes and validates a 64-character hex key.
func ParseKey(hexKey string) ([]byte, error) {
	if len(hexKey) != keyLength*2 {
		return nil, ErrConfiguration
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrConfiguration
	}

	return key, nil
}

// GenerateKey returns a fresh random 256-bit key as 64 hex characters,
// suitable for CALENDAR_ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt implements [SecretCipher].
func (b *cipherBox) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(b.rand, iv); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncryption, err)
	}

	// Seal returns ciphertext || tag.
	sealed := b.aead.Seal(nil, iv, []byte(plaintext), nil)
	split := len(sealed) - authTagLength

	secret := EncryptedSecret{
		IV:         iv,
		AuthTag:    sealed[split:],
		Ciphertext: sealed[:split],
	}

	return secret.String(), nil
}

// Decrypt implements [SecretCipher].
func (b *cipherBox) Decrypt(serialized string) (string, error) {
	secret, err := ParseEncryptedSecret(serialized)
	if err != nil {
		return "", ErrDecryption
	}

	sealed := make([]byte, 0, len(secret.Ciphertext)+len(secret.AuthTag))
	sealed = append(sealed, secret.Ciphertext...)
	sealed = append(sealed, secret.AuthTag...)

	plaintext, err := b.aead.Open(nil, secret.IV, sealed, nil)
	if err != nil {
		return "", ErrDecryption
	}

	return string(plaintext), nil
}
