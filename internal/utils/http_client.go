// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	userAgent        = "shift-calendar/1"
	httpRetryCount   = 2
	httpRetryWait    = 200 * time.Millisecond
	httpRetryMaxWait = 2 * time.Second
)

// HTTPClient wraps resty.Client for outbound calls to identity providers.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client with the given per-request timeout. Transport
// errors and 5xx responses are retried a bounded number of times.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(httpRetryCount).
		SetRetryWaitTime(httpRetryWait).
		SetRetryMaxWaitTime(httpRetryMaxWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode() >= http.StatusInternalServerError)
		})

	return &HTTPClient{Client: client}
}
