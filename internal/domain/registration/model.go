package registration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"regdesk/internal/domain/pricing"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Business rule constants
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"

	// CodePrefix is the event-specific prefix for human-readable registration codes.
	CodePrefix = "APLLS"

	// EarlyBirdCap is the fixed number of early-bird slots for the event.
	EarlyBirdCap = 150
)

// Domain errors
var (
	ErrDuplicateEmail = errors.New("a registration with this email already exists")
	ErrNotFound       = errors.New("registration not found")
)

// AddOnSelection holds the independently toggled optional extras.
type AddOnSelection struct {
	PoolsideParty       bool
	CommunityService    bool
	InstallationBanquet bool
}

// Identifiers returns the pricing identifiers of the selected add-ons.
// INVARIANT: order is stable (poolside, community service, banquet)
func (a AddOnSelection) Identifiers() []string {
	var ids []string
	if a.PoolsideParty {
		ids = append(ids, pricing.AddOnPoolsideParty)
	}
	if a.CommunityService {
		ids = append(ids, pricing.AddOnCommunityService)
	}
	if a.InstallationBanquet {
		ids = append(ids, pricing.AddOnInstallationBanquet)
	}
	return ids
}

// Registration holds state for a single event registration.
// ID is the storage-assigned sequential identifier; Code is the human-readable
// identifier shown to the registrant. The two are never reconciled.
type Registration struct {
	ID        int64
	Code      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	ClubName  string
	District  string
	Position  string
	Gender    string
	Address   string

	Tier   string
	AddOns AddOnSelection

	// Fee breakdown, computed server-side. TotalAmount is authoritative.
	TierFee     int
	AddOnFee    int
	TotalAmount int

	Vegetarian     bool
	TermsAccepted  bool
	PrivacyAgreed  bool
	MarketingOptIn bool

	PaymentSlipURL string
	Status         string
	CreatedAt      time.Time
}

// FullName returns the display name for the registrant.
func (r *Registration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Validate checks if the Registration has valid data.
// PRE: Registration struct is initialized with server-computed fees
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: TotalAmount == TierFee + AddOnFee
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" {
		return errors.New("name cannot be empty")
	}
	if len(r.FullName()) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	if !strings.Contains(r.Email, "@") || len(r.Email) > MaxEmailLength {
		return errors.New("email must be valid")
	}
	if r.Email != strings.ToLower(r.Email) {
		return errors.New("email must be lowercased before validation")
	}
	if !pricing.KnownTier(r.Tier) {
		return fmt.Errorf("registration tier must be one of %q, %q, %q",
			pricing.TierEarlyBird, pricing.TierStandard, pricing.TierLate)
	}
	if r.Status != StatusPending && r.Status != StatusConfirmed && r.Status != StatusCancelled {
		return errors.New("status must be 'pending', 'confirmed', or 'cancelled'")
	}
	if r.TotalAmount != r.TierFee+r.AddOnFee {
		return errors.New("total amount must equal tier fee plus add-on fee")
	}
	if !r.TermsAccepted {
		return errors.New("terms and conditions must be accepted")
	}
	return nil
}

// NewCode generates a human-readable registration code: prefix, millisecond
// timestamp, and a short random suffix.
// POST: Returns a code of the form APLLS-<epoch-ms>-<4 upper alnum>
func NewCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%d-%s", CodePrefix, now.UnixMilli(), suffix)
}

// SplitFullName splits a single full-name field into first and last name on the
// last whitespace. Single-word names become the first name.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndexAny(full, " \t")
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}

// CollapsePosition reduces the role fields captured by the form to a single
// position by first-non-empty precedence.
func CollapsePosition(ppoas, districtCabinet, club, ngo, generic string) string {
	for _, p := range []string{ppoas, districtCabinet, club, ngo, generic} {
		if strings.TrimSpace(p) != "" {
			return strings.TrimSpace(p)
		}
	}
	return ""
}

// Stats holds aggregate counts over all registrations.
type Stats struct {
	Total     int
	ByTier    map[string]int
	ByStatus  map[string]int
	Recent24h int
	Revenue   int
}

// EarlyBirdCount returns the number of early-bird registrations.
func (s Stats) EarlyBirdCount() int {
	return s.ByTier[pricing.TierEarlyBird]
}

// EarlyBirdRemaining returns the early-bird slots left against the fixed cap.
// POST: result >= 0
func (s Stats) EarlyBirdRemaining() int {
	remaining := EarlyBirdCap - s.EarlyBirdCount()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EarlyBirdPercentage returns the share of early-bird slots sold, 0-100.
func (s Stats) EarlyBirdPercentage() int {
	pct := s.EarlyBirdCount() * 100 / EarlyBirdCap
	if pct > 100 {
		return 100
	}
	return pct
}
