// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// fakeJetStream records stream operations without a live server.
type fakeJetStream struct {
	exists    bool
	streamErr error
	created   *jetstream.StreamConfig
	updated   *jetstream.StreamConfig
}

func (f *fakeJetStream) Stream(ctx context.Context, name string) (jetstream.Stream, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	if !f.exists {
		return nil, jetstream.ErrStreamNotFound
	}
	return nil, nil
}

func (f *fakeJetStream) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.created = &cfg
	return nil, nil
}

func (f *fakeJetStream) UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.updated = &cfg
	return nil, nil
}

func TestEnsureStreamCreatesWhenMissing(t *testing.T) {
	js := &fakeJetStream{}
	init, err := NewStreamInitializer(js, DefaultStreamConfig(30))
	if err != nil {
		t.Fatalf("NewStreamInitializer: %v", err)
	}

	if _, err := init.EnsureStream(context.Background()); err != nil {
		t.Fatalf("EnsureStream: %v", err)
	}
	if js.created == nil {
		t.Fatal("expected stream creation")
	}
	if js.updated != nil {
		t.Error("missing stream must not be updated")
	}

	cfg := js.created
	if cfg.Name != StreamName {
		t.Errorf("name = %q, want %q", cfg.Name, StreamName)
	}
	if len(cfg.Subjects) != 1 || cfg.Subjects[0] != "interaction.>" {
		t.Errorf("unexpected subjects %v", cfg.Subjects)
	}
	if cfg.Retention != jetstream.LimitsPolicy {
		t.Error("expected limits retention policy")
	}
	if cfg.Storage != jetstream.FileStorage {
		t.Error("expected file storage")
	}
	if cfg.MaxAge != 30*24*time.Hour {
		t.Errorf("max age = %v, want 720h", cfg.MaxAge)
	}
}

func TestEnsureStreamUpdatesWhenPresent(t *testing.T) {
	js := &fakeJetStream{exists: true}
	init, err := NewStreamInitializer(js, DefaultStreamConfig(7))
	if err != nil {
		t.Fatalf("NewStreamInitializer: %v", err)
	}

	if _, err := init.EnsureStream(context.Background()); err != nil {
		t.Fatalf("EnsureStream: %v", err)
	}
	if js.updated == nil {
		t.Fatal("expected stream update")
	}
	if js.created != nil {
		t.Error("existing stream must not be recreated")
	}
}

func TestEnsureStreamPropagatesUnexpectedErrors(t *testing.T) {
	js := &fakeJetStream{streamErr: errors.New("connection refused")}
	init, err := NewStreamInitializer(js, DefaultStreamConfig(30))
	if err != nil {
		t.Fatalf("NewStreamInitializer: %v", err)
	}

	if _, err := init.EnsureStream(context.Background()); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestNewStreamInitializerValidation(t *testing.T) {
	if _, err := NewStreamInitializer(nil, DefaultStreamConfig(30)); err == nil {
		t.Error("expected error for nil JetStream context")
	}
	if _, err := NewStreamInitializer(&fakeJetStream{}, StreamConfig{}); err == nil {
		t.Error("expected error for empty stream config")
	}
}

func TestIsHealthy(t *testing.T) {
	js := &fakeJetStream{exists: true}
	init, err := NewStreamInitializer(js, DefaultStreamConfig(30))
	if err != nil {
		t.Fatalf("NewStreamInitializer: %v", err)
	}
	if !init.IsHealthy(context.Background()) {
		t.Error("expected healthy with existing stream")
	}

	js.streamErr = errors.New("down")
	if init.IsHealthy(context.Background()) {
		t.Error("expected unhealthy on stream error")
	}
}
