// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

// Server is the lifecycle contract shared by the HTTP and gRPC servers.
type Server interface {
	// RunServer starts serving and blocks until a shutdown signal arrives.
	RunServer()

	// Shutdown stops the server and releases its listeners.
	Shutdown()
}
