// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics for interaction lifecycle events. Both are covered by the
// stream's "interaction.>" subject filter.
const (
	TopicInteractionCreated = "interaction.created"
	TopicInteractionDeleted = "interaction.deleted"
)

// StreamName is the JetStream stream holding interaction events.
const StreamName = "WAYFARE_INTERACTIONS"

// StreamSubjects is the subject filter bound to StreamName.
var StreamSubjects = []string{"interaction.>"}

// InteractionEvent describes a change to the interactions table.
//
// Created events carry the interaction fields. Deleted events carry
// the deletion scope and the number of rows removed; UserID and TourID
// are set only when the scope names them.
type InteractionEvent struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id,omitempty"`
	TourID     int64     `json:"tour_id,omitempty"`
	Type       string    `json:"interaction_type,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Scope      string    `json:"scope,omitempty"`
	Deleted    int64     `json:"deleted,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Deletion scopes carried by TopicInteractionDeleted events.
const (
	ScopeAll  = "all"
	ScopeUser = "user"
	ScopeTour = "tour"
	ScopeAge  = "age"
)

// NewInteractionEvent returns an event with a unique id and timestamp.
func NewInteractionEvent() *InteractionEvent {
	return &InteractionEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	}
}

// SerializeEvent encodes an event for the wire.
func SerializeEvent(ev *InteractionEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction event: %w", err)
	}
	return data, nil
}

// DeserializeEvent decodes an event from the wire.
func DeserializeEvent(data []byte) (*InteractionEvent, error) {
	var ev InteractionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal interaction event: %w", err)
	}
	return &ev, nil
}
