// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells withRetry whether a failed statement may be
// repeated.
type ErrorClassification int

const (
	// NonRetryable is the default for constraint, syntax and unknown errors.
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures such as lost connections,
	// deadlocks and lock timeouts.
	Retryable
)

// ErrorClassificator decides how a failed statement should be handled by
// the driver-agnostic repositories.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	IsUniqueViolation(err error) bool
}

// PostgresErrorClassifier implements [ErrorClassificator] over pgconn error
// codes.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return NonRetryable
	}
	return ClassifyPgError(pgErr)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation
// (23505), raised for example by a duplicate login.
func (c *PostgresErrorClassifier) IsUniqueViolation(err error) bool {
	return postgresError(err) == pgerrcode.UniqueViolation
}

// ClassifyPgError maps a PostgreSQL error code to an [ErrorClassification].
// Connection exceptions (class 08), transaction rollbacks (class 40),
// lock_not_available and cannot_connect_now are retryable. The
// users_calendar_sync_requires_tokens check violation and every other code
// are not.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	switch {
	case pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsTransactionRollback(pgErr.Code):
		return Retryable
	}

	switch pgErr.Code {
	case pgerrcode.LockNotAvailable, pgerrcode.CannotConnectNow:
		return Retryable
	default:
		return NonRetryable
	}
}
