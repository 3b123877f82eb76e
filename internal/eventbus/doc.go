// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package eventbus fans detector anomalies out to live consumers.
//
// The bus wraps a Watermill publisher and subscriber pair. By default it is
// an in-process GoChannel; with nats.enabled it is backed by NATS JetStream
// through watermill-nats, optionally served by an embedded nats-server so a
// single binary needs no external broker.
//
// Publishing is protected by a circuit breaker and never blocks the frame
// loop for long: a failing broker trips the breaker and publishes fail fast.
// Each named consumer receives every anomaly; handler errors nack the
// message so the bus redelivers it.
package eventbus
