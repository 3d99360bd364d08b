// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MatrixBuilder is the engine operation the refresher drives.
type MatrixBuilder interface {
	BuildMatrix(ctx context.Context, force bool) error
}

// MatrixRefreshService warms the recommendation matrices at startup
// and revalidates them on an interval, so the first request after a
// cache expiry does not pay the build cost. Builds are non-forced: a
// still-valid cache makes the tick a no-op.
type MatrixRefreshService struct {
	builder  MatrixBuilder
	interval time.Duration
	logger   zerolog.Logger
}

// NewMatrixRefreshService creates the refresher. A non-positive
// interval defaults to 30 minutes.
func NewMatrixRefreshService(builder MatrixBuilder, interval time.Duration, logger zerolog.Logger) *MatrixRefreshService {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &MatrixRefreshService{
		builder:  builder,
		interval: interval,
		logger:   logger,
	}
}

// Serve implements suture.Service. A failed build is logged and
// retried on the next tick rather than crashing the service; the
// request path can still build on demand.
func (s *MatrixRefreshService) Serve(ctx context.Context) error {
	if err := s.builder.BuildMatrix(ctx, false); err != nil {
		s.logger.Warn().Err(err).Msg("initial matrix warmup failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.builder.BuildMatrix(ctx, false); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled matrix refresh failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *MatrixRefreshService) String() string {
	return "matrix-refresh"
}
