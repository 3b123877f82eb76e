// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package eventbus

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/focusguard/internal/detection"
)

// AnomalyMessage is the bus payload for one detector event.
type AnomalyMessage struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"session_id"`
	CandidateName string              `json:"candidate_name,omitempty"`
	Category      detection.Category  `json:"category"`
	Type          detection.EventType `json:"type"`
	Message       string              `json:"message"`
	Timestamp     time.Time           `json:"timestamp"`
	ElapsedMS     int64               `json:"elapsed_ms,omitempty"`
	FaceCount     int                 `json:"face_count,omitempty"`
	Label         string              `json:"label,omitempty"`
	Confidence    float64             `json:"confidence,omitempty"`
}

// NewAnomalyMessage builds a bus payload from a detector event.
func NewAnomalyMessage(id, sessionID, candidate string, e detection.Event) AnomalyMessage {
	return AnomalyMessage{
		ID:            id,
		SessionID:     sessionID,
		CandidateName: candidate,
		Category:      e.Category,
		Type:          e.Type,
		Message:       e.Message,
		Timestamp:     e.Timestamp,
		ElapsedMS:     e.Elapsed.Milliseconds(),
		FaceCount:     e.FaceCount,
		Label:         e.Label,
		Confidence:    e.Confidence,
	}
}

const (
	metaSessionID = "session_id"
	metaCategory  = "category"
	metaType      = "type"
)

func encode(a AnomalyMessage) (*message.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal anomaly: %w", err)
	}
	msg := message.NewMessage(a.ID, data)
	msg.Metadata.Set(metaSessionID, a.SessionID)
	msg.Metadata.Set(metaCategory, string(a.Category))
	msg.Metadata.Set(metaType, string(a.Type))
	return msg, nil
}

func decode(msg *message.Message) (AnomalyMessage, error) {
	var a AnomalyMessage
	if err := json.Unmarshal(msg.Payload, &a); err != nil {
		return a, fmt.Errorf("unmarshal anomaly %s: %w", msg.UUID, err)
	}
	return a, nil
}
