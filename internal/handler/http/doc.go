// Package http implements the HTTP transport layer of the shift-calendar
// server.
//
// It exposes route wiring, request handlers, and middleware used by the REST
// API. Authentication, request tracing, access logging and request metrics
// are handled in this package before requests are delegated to the service
// layer. The Google Calendar routes are only mounted when the calendar
// integration is configured.
package http
