// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/user/register", h.register)
		r.Post("/api/user/login", h.login)
		r.Get("/api/version/", h.getServerVersion)
	})

	if h.metrics != nil {
		router.Handle("/metrics", h.metrics.Handler())
	}

	if h.services.CalendarAuthService != nil {
		router.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.Get("/api/calendar/connect", h.calendarConnect)
			r.Get("/api/calendar/callback", h.calendarCallback)
			r.Get("/api/calendar/status", h.calendarStatus)
			r.Delete("/api/calendar/connection", h.calendarDisconnect)
			r.Get("/api/calendar/calendars", h.listCalendars)
		})
	}

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
