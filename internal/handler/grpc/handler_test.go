// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/mock"
	"github.com/MKhiriev/shift-calendar/internal/service"
)

func startHealthServer(t *testing.T, h *Handler) healthpb.HealthClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	h.Register(server)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, name string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_CalendarDisabled(t *testing.T) {
	client := startHealthServer(t, NewHandler(&service.Services{}, logger.Nop()))

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, CalendarService))
}

func TestHealth_CalendarEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	services := &service.Services{CalendarAuthService: mock.NewMockCalendarAuthService(ctrl)}

	client := startHealthServer(t, NewHandler(services, logger.Nop()))

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, CalendarService))
}

func TestHealth_Shutdown(t *testing.T) {
	h := NewHandler(&service.Services{}, logger.Nop())
	client := startHealthServer(t, h)

	h.Shutdown()

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
}
