// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package events

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillLoggerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWatermillLogger(zerolog.New(&buf))

	logger.Info("consumer started", watermill.LogFields{"topic": "interaction.created"})

	out := buf.String()
	if !strings.Contains(out, "consumer started") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "interaction.created") {
		t.Errorf("missing field in %q", out)
	}
}

func TestWatermillLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWatermillLogger(zerolog.New(&buf))

	logger.Error("publish failed", errors.New("broker gone"), nil)

	out := buf.String()
	if !strings.Contains(out, "broker gone") {
		t.Errorf("missing error in %q", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("missing level in %q", out)
	}
}

func TestWatermillLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWatermillLogger(zerolog.New(&buf))

	scoped := logger.With(watermill.LogFields{"handler": "invalidate-on-create"})
	scoped.Info("processing", nil)

	if !strings.Contains(buf.String(), "invalidate-on-create") {
		t.Errorf("missing inherited field in %q", buf.String())
	}
}
