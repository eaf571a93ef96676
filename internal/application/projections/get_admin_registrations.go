package projections

import (
	"context"
	"time"

	"regdesk/internal/adapters/storage/registration"
	domain "regdesk/internal/domain/registration"
)

// AdminRegistrationsStore defines the store interface for the admin listing.
type AdminRegistrationsStore interface {
	List(ctx context.Context, filter registration.ListFilter) ([]domain.Registration, error)
	Stats(ctx context.Context, now time.Time) (domain.Stats, error)
}

// GetAdminRegistrationsQuery carries listing parameters.
type GetAdminRegistrationsQuery struct {
	Limit  int
	Offset int
	Tier   string
	Status string
}

// GetAdminRegistrationsDeps holds dependencies for the admin listing projection.
type GetAdminRegistrationsDeps struct {
	RegistrationStore AdminRegistrationsStore
	Now               func() time.Time
}

// GetAdminRegistrationsResult pairs the full registration rows with the
// aggregate statistics block shown at the top of the admin view.
type GetAdminRegistrationsResult struct {
	Registrations []domain.Registration
	Counts        RegistrationCounts
}

// QueryGetAdminRegistrations returns the newest-first registration listing
// with aggregate statistics. Intended for authenticated admin use only.
// PRE: caller has already verified the admin credential
// POST: Registrations ordered newest first; Counts covers all rows, not just the page
func QueryGetAdminRegistrations(ctx context.Context, query GetAdminRegistrationsQuery, deps GetAdminRegistrationsDeps) (GetAdminRegistrationsResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	rows, err := deps.RegistrationStore.List(ctx, registration.ListFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
		Tier:   query.Tier,
		Status: query.Status,
	})
	if err != nil {
		return GetAdminRegistrationsResult{}, err
	}

	stats, err := deps.RegistrationStore.Stats(ctx, now)
	if err != nil {
		return GetAdminRegistrationsResult{}, err
	}

	return GetAdminRegistrationsResult{
		Registrations: rows,
		Counts:        countsFromStats(stats),
	}, nil
}
