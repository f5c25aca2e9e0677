// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/secret_cipher_mock.go -package=mock

// SecretCipher encrypts short secrets (OAuth tokens) for storage at rest.
//
// The serialized form is produced by [EncryptedSecret.String]:
//
//	hex(iv):hex(authTag):hex(ciphertext)
//
// Every call to Encrypt draws a fresh random IV, so encrypting the same
// plaintext twice yields two different strings.
type SecretCipher interface {
	// Encrypt seals plaintext and returns its serialized EncryptedSecret.
	Encrypt(plaintext string) (string, error)

	// Decrypt opens a serialized EncryptedSecret. Any failure (bad shape,
	// bad hex, wrong key, tampered bytes) is reported as [ErrDecryption]
	// without further detail.
	Decrypt(serialized string) (string, error)
}
