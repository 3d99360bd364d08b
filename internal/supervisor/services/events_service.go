// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package services

import (
	"context"
)

// EventConsumer is the subset of the event bus the wrapper runs: the
// message router that feeds cache invalidation.
type EventConsumer interface {
	Serve(ctx context.Context) error
}

// EventBusService adapts the event bus consumer to suture.Service so
// a crashed router is restarted with backoff.
type EventBusService struct {
	consumer EventConsumer
}

// NewEventBusService wraps the consumer.
func NewEventBusService(consumer EventConsumer) *EventBusService {
	return &EventBusService{consumer: consumer}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	return s.consumer.Serve(ctx)
}

// String names the service in supervisor logs.
func (s *EventBusService) String() string {
	return "event-bus"
}
