// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const stateBytes = 32

// GenerateState returns a random, URL-safe anti-forgery value for the OAuth
// "state" parameter.
func GenerateState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// StatesEqual compares two state values in constant time. Empty values
// never match.
func StatesEqual(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
