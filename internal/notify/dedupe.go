// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package notify

import (
	"context"
	"time"

	"github.com/tomtom215/focusguard/internal/cache"
	"github.com/tomtom215/focusguard/internal/eventbus"
	"github.com/tomtom215/focusguard/internal/logging"
)

// Once wraps h so an anomaly ID is handled successfully at most once within
// ttl. The bus delivers at least once; a failed attempt is not remembered,
// so the redelivery still reaches h.
func Once(h eventbus.Handler, capacity int, ttl time.Duration) eventbus.Handler {
	handled := cache.NewLRU[string, struct{}](capacity, ttl)
	return func(ctx context.Context, a eventbus.AnomalyMessage) error {
		if handled.Contains(a.ID) {
			logging.Debug().Str("anomaly_id", a.ID).Msg("Skipping redelivered anomaly")
			return nil
		}
		if err := h(ctx, a); err != nil {
			return err
		}
		handled.Add(a.ID, struct{}{})
		return nil
	}
}
