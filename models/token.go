// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Token is a session token issued to a logged-in user.
//
// SignedString is the compact JWS form sent in the Authorization header
// and the session cookie. UserID is the parsed "sub" claim.
type Token struct {
	SignedString string    `json:"-"`
	UserID       int64     `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t Token) String() string {
	return t.SignedString
}
