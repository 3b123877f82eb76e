// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips t when no container provider answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// CleanupContainer terminates c; a failure is logged, not fatal.
func CleanupContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	if err := testcontainers.TerminateContainer(c); err != nil {
		t.Logf("terminate %T: %v", c, err)
	}
}

// startContainer runs req and returns the container with the host:port that
// port is published on.
func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port nat.Port) (testcontainers.Container, string, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start %s: %w", req.Image, err)
	}

	endpoint, err := c.PortEndpoint(ctx, port, "")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, "", fmt.Errorf("resolve %s on %s: %w", port, req.Image, err)
	}
	return c, endpoint, nil
}
