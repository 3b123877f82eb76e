// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package recorder

import (
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a 24 character hex identifier: four bytes of big-endian Unix
// seconds followed by eight random bytes. IDs sort roughly by creation time.
func NewID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	r := uuid.New()
	copy(b[4:], r[:8])
	return hex.EncodeToString(b[:])
}

// ValidID reports whether s has the session identifier format.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
