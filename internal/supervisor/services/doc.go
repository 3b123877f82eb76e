// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package services adapts components without a Serve method to
// suture.Service. Most FocusGuard components (queue, hub, monitor manager,
// bus consumers) implement Serve themselves and are added to the tree
// directly.
package services
