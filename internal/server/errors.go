// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned when the handlers carry no transport
// to listen on.
var errNoServersAreCreated = errors.New("no servers are created")
