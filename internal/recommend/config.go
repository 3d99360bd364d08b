// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"fmt"
	"time"
)

// Config controls engine behavior. The zero value is not usable; start
// from DefaultConfig and override as needed.
type Config struct {
	// Normalize enables mean-centering of each user row before
	// similarity computation.
	// Default: true
	Normalize bool

	// HandleSparse zeroes user rows and tour columns with fewer than
	// two nonzero cells.
	// Default: true
	HandleSparse bool

	// RemoveOutliers caps cells above Q3 + 1.5*IQR of the positive
	// cell distribution.
	// Default: true
	RemoveOutliers bool

	// UseTimeDecay applies exponential decay to interaction scores by
	// age at matrix build time.
	// Default: true
	UseTimeDecay bool

	// HalfLifeDays is the decay half-life: an interaction this many
	// days old keeps 50% of its weight.
	// Default: 30
	HalfLifeDays float64

	// UseDiversity enables MMR re-ranking of candidates.
	// Default: true
	UseDiversity bool

	// DiversityWeight trades relevance against diversity in MMR;
	// the MMR lambda is 1 - DiversityWeight. Range [0, 1].
	// Default: 0.3
	DiversityWeight float64

	// EnableExplanations attaches a human-readable explanation to each
	// recommendation.
	// Default: true
	EnableExplanations bool

	// EnableCaching enables content-hash cache validation on top of
	// the TTL check.
	// Default: true
	EnableCaching bool

	// CacheTTL is how long a built matrix is served without
	// revalidation.
	// Default: 1h
	CacheTTL time.Duration

	// TopKUsers is the neighborhood size for user-based prediction.
	// Default: 5
	TopKUsers int

	// HybridUserWeight weights the user-based side of hybrid scoring;
	// the tour-based side gets 1 - HybridUserWeight. Range [0, 1].
	// Default: 0.5
	HybridUserWeight float64

	// BatchChunkSize is how many users a batch run processes per
	// chunk. Chunking bounds transient allocations only; it never
	// changes results.
	// Default: 100
	BatchChunkSize int

	// SparsityWarnThreshold is the overall zero-cell ratio above which
	// a data-quality warning is logged.
	// Default: 0.95
	SparsityWarnThreshold float64
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Normalize:             true,
		HandleSparse:          true,
		RemoveOutliers:        true,
		UseTimeDecay:          true,
		HalfLifeDays:          30,
		UseDiversity:          true,
		DiversityWeight:       0.3,
		EnableExplanations:    true,
		EnableCaching:         true,
		CacheTTL:              time.Hour,
		TopKUsers:             5,
		HybridUserWeight:      0.5,
		BatchChunkSize:        100,
		SparsityWarnThreshold: 0.95,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HalfLifeDays <= 0 {
		return fmt.Errorf("half life days must be positive, got %v", c.HalfLifeDays)
	}
	if c.DiversityWeight < 0 || c.DiversityWeight > 1 {
		return fmt.Errorf("diversity weight must be in [0, 1], got %v", c.DiversityWeight)
	}
	if c.HybridUserWeight < 0 || c.HybridUserWeight > 1 {
		return fmt.Errorf("hybrid user weight must be in [0, 1], got %v", c.HybridUserWeight)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	if c.TopKUsers <= 0 {
		return fmt.Errorf("top K users must be positive, got %d", c.TopKUsers)
	}
	if c.BatchChunkSize <= 0 {
		return fmt.Errorf("batch chunk size must be positive, got %d", c.BatchChunkSize)
	}
	if c.SparsityWarnThreshold <= 0 || c.SparsityWarnThreshold > 1 {
		return fmt.Errorf("sparsity warn threshold must be in (0, 1], got %v", c.SparsityWarnThreshold)
	}
	return nil
}
