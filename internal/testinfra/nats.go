// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultNATSImage = "nats:2.10-alpine"
	natsPort         = "4222/tcp"
)

// NATSContainer is a running JetStream-enabled NATS server.
type NATSContainer struct {
	testcontainers.Container
	URL string
}

// NewNATSContainer starts NATS with JetStream enabled.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultNATSImage,
		ExposedPorts: []string{natsPort},
		Cmd:          []string{"-js"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server is ready"),
			wait.ForListeningPort(natsPort),
		).WithStartupTimeout(30 * time.Second),
	}

	container, addr, err := startContainer(ctx, req, natsPort)
	if err != nil {
		return nil, fmt.Errorf("create nats container: %w", err)
	}
	return &NATSContainer{Container: container, URL: "nats://" + addr}, nil
}
