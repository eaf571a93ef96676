package registration

import (
	"context"
	"time"

	domain "regdesk/internal/domain/registration"
)

// Store persists Registration state.
type Store interface {
	Save(ctx context.Context, value domain.Registration) (domain.Registration, error)
	GetByEmail(ctx context.Context, email string) (domain.Registration, error)
	GetByCode(ctx context.Context, code string) (domain.Registration, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Registration, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context, now time.Time) (domain.Stats, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Tier   string
	Status string
}
