// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import "errors"

var (
	// ErrInvalidMethod is returned when a recommendation method name
	// is not one of user_based, tour_based, or hybrid.
	ErrInvalidMethod = errors.New("invalid recommendation method")

	// ErrUnknownTour is returned by ColdStartTour when the anchor tour
	// does not exist.
	ErrUnknownTour = errors.New("unknown tour")
)
