package projections

import (
	"context"
	"time"

	"regdesk/internal/domain/registration"
)

// CountsStore defines the store interface for the public counts projection.
type CountsStore interface {
	Stats(ctx context.Context, now time.Time) (registration.Stats, error)
}

// GetRegistrationCountsDeps holds dependencies for the counts projection.
type GetRegistrationCountsDeps struct {
	RegistrationStore CountsStore
	Now               func() time.Time
}

// RegistrationCounts is the public aggregate view. It carries no personal
// data and is safe to expose without authentication.
type RegistrationCounts struct {
	Total               int
	ByTier              map[string]int
	ByStatus            map[string]int
	Recent24h           int
	Revenue             int
	EarlyBirdCount      int
	EarlyBirdCap        int
	EarlyBirdRemaining  int
	EarlyBirdPercentage int
}

// QueryGetRegistrationCounts returns aggregate registration counts and
// early-bird availability derived from the fixed cap.
// PRE: deps.RegistrationStore is non-nil
// POST: EarlyBirdRemaining >= 0 and EarlyBirdPercentage is within 0-100
func QueryGetRegistrationCounts(ctx context.Context, deps GetRegistrationCountsDeps) (RegistrationCounts, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	stats, err := deps.RegistrationStore.Stats(ctx, now)
	if err != nil {
		return RegistrationCounts{}, err
	}

	return countsFromStats(stats), nil
}

// countsFromStats derives the public view from domain aggregates.
func countsFromStats(stats registration.Stats) RegistrationCounts {
	return RegistrationCounts{
		Total:               stats.Total,
		ByTier:              stats.ByTier,
		ByStatus:            stats.ByStatus,
		Recent24h:           stats.Recent24h,
		Revenue:             stats.Revenue,
		EarlyBirdCount:      stats.EarlyBirdCount(),
		EarlyBirdCap:        registration.EarlyBirdCap,
		EarlyBirdRemaining:  stats.EarlyBirdRemaining(),
		EarlyBirdPercentage: stats.EarlyBirdPercentage(),
	}
}
