package registration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"regdesk/internal/adapters/storage"
	domain "regdesk/internal/domain/registration"
)

// registrationColumns is the column list shared by all SELECT queries.
const registrationColumns = `id, code, first_name, last_name, email, phone, club_name,
	district, position, gender, address, tier, poolside_party, community_service,
	installation_banquet, tier_fee, addon_fee, total_amount, vegetarian,
	terms_accepted, privacy_agreed, marketing_opt_in, payment_slip_url, status, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts a registration and returns it with the assigned storage id.
// The email UNIQUE constraint is the enforcement point for duplicates; a
// violation is reported as domain.ErrDuplicateEmail.
// PRE: entity has been validated; Email is lowercased; CreatedAt is set
// POST: Entity is persisted with a monotonically increasing id
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Registration) (domain.Registration, error) {
	query := `INSERT INTO registration (
		code, first_name, last_name, email, phone, club_name, district, position,
		gender, address, tier, poolside_party, community_service, installation_banquet,
		tier_fee, addon_fee, total_amount, vegetarian, terms_accepted, privacy_agreed,
		marketing_opt_in, payment_slip_url, status, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		entity.Code,
		entity.FirstName,
		entity.LastName,
		entity.Email,
		entity.Phone,
		entity.ClubName,
		entity.District,
		entity.Position,
		entity.Gender,
		entity.Address,
		entity.Tier,
		entity.AddOns.PoolsideParty,
		entity.AddOns.CommunityService,
		entity.AddOns.InstallationBanquet,
		entity.TierFee,
		entity.AddOnFee,
		entity.TotalAmount,
		entity.Vegetarian,
		entity.TermsAccepted,
		entity.PrivacyAgreed,
		entity.MarketingOptIn,
		entity.PaymentSlipURL,
		entity.Status,
		entity.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: registration.email") {
			return domain.Registration{}, domain.ErrDuplicateEmail
		}
		return domain.Registration{}, fmt.Errorf("failed to insert registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Registration{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	entity.ID = id
	return entity, nil
}

// GetByEmail retrieves a Registration by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registration WHERE email = ?"
	row := s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanRegistration(row)
}

// GetByCode retrieves a Registration by its human-readable code.
// PRE: code is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registration WHERE code = ?"
	row := s.db.QueryRowContext(ctx, query, code)
	return scanRegistration(row)
}

// listWhereClause builds the WHERE clause and args for List queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Tier != "" {
		where += " AND tier = ?"
		args = append(args, filter.Tier)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	return where, args
}

// List retrieves registrations newest-first.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by id descending
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Registration, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + registrationColumns + " FROM registration" + where + " ORDER BY id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Registration
	for rows.Next() {
		entity, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of registrations.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registration").Scan(&count)
	return count, err
}

// Stats computes aggregate counts over all registrations.
// The 24-hour window is rolling from now, not a calendar day.
// PRE: now is the caller's notion of the current time
// POST: Returns totals, per-tier and per-status counts, and the revenue sum
func (s *SQLiteStore) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	stats := domain.Stats{
		ByTier:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM registration").
		Scan(&stats.Total, &stats.Revenue)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to count registrations: %w", err)
	}

	if err := s.groupCount(ctx, "tier", stats.ByTier); err != nil {
		return domain.Stats{}, err
	}
	if err := s.groupCount(ctx, "status", stats.ByStatus); err != nil {
		return domain.Stats{}, err
	}

	// RFC 3339 UTC strings compare lexicographically in timestamp order.
	cutoff := now.Add(-24 * time.Hour).UTC().Format(time.RFC3339Nano)
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registration WHERE created_at >= ?", cutoff).
		Scan(&stats.Recent24h)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to count recent registrations: %w", err)
	}

	return stats, nil
}

// groupCount fills dest with COUNT(*) grouped by the given column.
func (s *SQLiteStore) groupCount(ctx context.Context, column string, dest map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM registration GROUP BY "+column)
	if err != nil {
		return fmt.Errorf("failed to group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRegistration scans a single row, mapping sql.ErrNoRows to domain.ErrNotFound.
func scanRegistration(row *sql.Row) (domain.Registration, error) {
	entity, err := scanRegistrationRow(row)
	if err == sql.ErrNoRows {
		return domain.Registration{}, domain.ErrNotFound
	}
	return entity, err
}

// scanRegistrationRow scans the shared column list into a Registration.
func scanRegistrationRow(row rowScanner) (domain.Registration, error) {
	var entity domain.Registration
	var createdAt string
	err := row.Scan(
		&entity.ID,
		&entity.Code,
		&entity.FirstName,
		&entity.LastName,
		&entity.Email,
		&entity.Phone,
		&entity.ClubName,
		&entity.District,
		&entity.Position,
		&entity.Gender,
		&entity.Address,
		&entity.Tier,
		&entity.AddOns.PoolsideParty,
		&entity.AddOns.CommunityService,
		&entity.AddOns.InstallationBanquet,
		&entity.TierFee,
		&entity.AddOnFee,
		&entity.TotalAmount,
		&entity.Vegetarian,
		&entity.TermsAccepted,
		&entity.PrivacyAgreed,
		&entity.MarketingOptIn,
		&entity.PaymentSlipURL,
		&entity.Status,
		&createdAt,
	)
	if err != nil {
		return domain.Registration{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	entity.CreatedAt = ts
	return entity, nil
}
