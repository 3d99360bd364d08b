// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/wayfarelabs/wayfare/internal/metrics"
)

// Engine is the collaborative filtering engine. One engine instance
// may be shared by concurrent request handlers: the build/invalidate
// path is serialized by a mutex, while readers work on immutable
// snapshots loaded without locking.
type Engine struct {
	provider DataProvider
	cfg      Config
	logger   zerolog.Logger

	// mu serializes snapshot replacement (build, similarity
	// computation, invalidation).
	mu    sync.Mutex
	state atomic.Pointer[modelState]

	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	matrixBuilds atomic.Int64
}

// New creates an engine backed by the given data provider.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(provider DataProvider, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
	e.state.Store(&modelState{})
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// BuildMatrix ensures the interaction matrix is built, rebuilding when
// forced or when the cache is no longer valid.
func (e *Engine) BuildMatrix(ctx context.Context, force bool) error {
	_, err := e.ensureMatrix(ctx, force)
	return err
}

// ensureMatrix returns a snapshot with a current matrix, rebuilding if
// needed. Cache validity is two-tier: a matrix younger than the TTL is
// served as is; an older one is still served when the data signature
// hash is unchanged.
func (e *Engine) ensureMatrix(ctx context.Context, force bool) (*modelState, error) {
	if !force {
		if s := e.validCached(ctx); s != nil {
			e.cacheHits.Add(1)
			metrics.EngineCacheHits.Inc()
			return s, nil
		}
		e.cacheMisses.Add(1)
		metrics.EngineCacheMisses.Inc()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have rebuilt while we waited on the lock.
	if !force {
		if s := e.validCached(ctx); s != nil {
			return s, nil
		}
	}

	start := time.Now()
	state, err := e.buildState(ctx)
	if err != nil {
		// Prior cache state stays intact on a failed build.
		return nil, err
	}

	e.state.Store(state)
	e.matrixBuilds.Add(1)
	metrics.MatrixBuilds.Inc()
	metrics.MatrixBuildDuration.Observe(time.Since(start).Seconds())

	return state, nil
}

// validCached returns the current snapshot when it can be served
// without a rebuild, or nil when a rebuild is required.
func (e *Engine) validCached(ctx context.Context) *modelState {
	s := e.state.Load()
	if !s.built {
		return nil
	}
	if time.Since(s.builtAt) < e.cfg.CacheTTL {
		return s
	}
	if e.cfg.EnableCaching && s.dataHash != "" {
		sig, err := e.provider.DataSignature(ctx)
		if err != nil {
			return nil
		}
		if signatureHash(sig) == s.dataHash {
			return s
		}
	}
	return nil
}

// ensureUserSimilarity returns a snapshot with the user similarity
// matrix computed. The computation is lazy and cached until the next
// matrix rebuild or invalidation.
func (e *Engine) ensureUserSimilarity(ctx context.Context) (*modelState, error) {
	s, err := e.ensureMatrix(ctx, false)
	if err != nil {
		return nil, err
	}
	if s.empty() || s.userSim != nil {
		return s, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s = e.state.Load()
	if s.empty() || s.userSim != nil {
		return s, nil
	}

	next := *s
	next.userSim = cosineSimilarityMatrix(s.processed)
	e.state.Store(&next)
	metrics.SimilarityComputations.WithLabelValues("user").Inc()

	return &next, nil
}

// ensureTourSimilarity returns a snapshot with the tour similarity
// matrix computed over the transposed processed matrix.
func (e *Engine) ensureTourSimilarity(ctx context.Context) (*modelState, error) {
	s, err := e.ensureMatrix(ctx, false)
	if err != nil {
		return nil, err
	}
	if s.empty() || s.tourSim != nil {
		return s, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s = e.state.Load()
	if s.empty() || s.tourSim != nil {
		return s, nil
	}

	next := *s
	next.tourSim = cosineSimilarityMatrix(transpose(s.processed))
	e.state.Store(&next)
	metrics.SimilarityComputations.WithLabelValues("tour").Inc()

	return &next, nil
}

// Recommend dispatches to the strategy named by method.
func (e *Engine) Recommend(ctx context.Context, userID int64, method string, limit int) ([]Recommendation, error) {
	switch method {
	case MethodUserBased:
		return e.UserBased(ctx, userID, limit)
	case MethodTourBased:
		return e.TourBased(ctx, userID, limit)
	case MethodHybrid:
		return e.Hybrid(ctx, userID, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
}

// InvalidateCache drops all cached matrices, flags, the content hash,
// and the interaction history side table. Callers must invoke this
// after any interaction mutation so stale matrices are never served.
func (e *Engine) InvalidateCache() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Store(&modelState{})
	metrics.CacheInvalidations.Inc()
	e.logger.Debug().Msg("recommendation caches invalidated")
}

// CacheStats reports the current cache state.
func (e *Engine) CacheStats() CacheStats {
	s := e.state.Load()

	stats := CacheStats{
		MatrixBuilt:              s.built,
		UserSimilarityCalculated: s.userSim != nil,
		TourSimilarityCalculated: s.tourSim != nil,
		CacheEnabled:             e.cfg.EnableCaching,
		CacheTTLSeconds:          int(e.cfg.CacheTTL.Seconds()),
	}

	if s.built {
		age := time.Since(s.builtAt).Seconds()
		valid := age < e.cfg.CacheTTL.Seconds()
		stats.MatrixAgeSeconds = &age
		stats.CacheValid = &valid

		stats.MatrixShape = matrixShape(s.processed)
		stats.MatrixSizeMB = matrixSizeMB(s.processed)
	}
	if s.userSim != nil {
		stats.UserSimilarityShape = matrixShape(s.userSim)
		stats.UserSimilaritySizeMB = matrixSizeMB(s.userSim)
	}
	if s.tourSim != nil {
		stats.TourSimilarityShape = matrixShape(s.tourSim)
		stats.TourSimilaritySizeMB = matrixSizeMB(s.tourSim)
	}

	return stats
}

func matrixShape(m [][]float64) []int {
	if len(m) == 0 {
		return []int{0, 0}
	}
	return []int{len(m), len(m[0])}
}

func matrixSizeMB(m [][]float64) *float64 {
	cells := 0
	for _, row := range m {
		cells += len(row)
	}
	size := float64(cells) * 8 / (1024 * 1024)
	return &size
}
