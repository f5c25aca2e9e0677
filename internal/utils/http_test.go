// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	type status struct {
		Connected bool   `json:"connected"`
		Email     string `json:"email,omitempty"`
	}

	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{name: "struct", data: status{Connected: true, Email: "a@b.c"}, status: http.StatusOK, wantBody: `{"connected":true,"email":"a@b.c"}`},
		{name: "custom status", data: map[string]string{"error": "not found"}, status: http.StatusNotFound, wantBody: `{"error":"not found"}`},
		{name: "nil", data: nil, status: http.StatusOK, wantBody: `null`},
		{name: "empty struct", data: struct{}{}, status: http.StatusOK, wantBody: `{}`},
		{name: "slice", data: []int{1, 2, 3}, status: http.StatusCreated, wantBody: `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, WriteJSON(w, tt.data, tt.status))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
