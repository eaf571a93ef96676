package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"regdesk/internal/adapters/blob"
	"regdesk/internal/domain/pricing"
	"regdesk/internal/domain/registration"
	"regdesk/internal/domain/slip"
)

// ErrValidation marks errors caused by bad input rather than system failure.
// Callers map it to a 400 response.
var ErrValidation = errors.New("validation failed")

// RegistrationStore defines the persistence interface for registration submission.
type RegistrationStore interface {
	Save(ctx context.Context, r registration.Registration) (registration.Registration, error)
	GetByEmail(ctx context.Context, email string) (registration.Registration, error)
}

// BlobStore defines the blob persistence interface for payment slips.
type BlobStore interface {
	Put(ctx context.Context, obj blob.Object) (blob.StoredObject, error)
}

// SubmitRegistrationInput carries normalized form input. Boolean flags are
// normalized at the HTTP boundary; this layer never sees "Yes"/"" truthiness.
type SubmitRegistrationInput struct {
	FirstName     string
	LastName      string
	FullName      string // used only when FirstName and LastName are both empty
	Email         string
	Phone         string
	ClubName      string
	District      string
	OtherDistrict string
	Gender        string
	Address       string

	// Position fields collapsed by first-non-empty precedence.
	PPOASPosition           string
	DistrictCabinetPosition string
	ClubPosition            string
	PositionInNGO           string
	Position                string

	Tier                string
	PoolsideParty       bool
	CommunityService    bool
	InstallationBanquet bool

	Vegetarian     bool
	TermsAccepted  bool
	PrivacyAgreed  bool
	MarketingOptIn bool

	// Payment slip: either an inline data URI or a pre-uploaded URL.
	PaymentSlipDataURI  string
	PaymentSlipFileName string
	PaymentSlipFileType string
	PaymentSlipURL      string
}

// SubmitRegistrationDeps holds dependencies for SubmitRegistration.
type SubmitRegistrationDeps struct {
	RegistrationStore RegistrationStore
	BlobStore         BlobStore
	Confirmation      *ConfirmationDeps // nil disables confirmation email
	Now               func() time.Time
}

// ExecuteSubmitRegistration coordinates a registration submission: validation,
// duplicate-email check, server-side fee computation, optional payment-slip
// storage, persistence, and a best-effort confirmation email.
// PRE: Input flags are normalized booleans; deps.RegistrationStore is non-nil
// POST: Registration persisted with Status=pending and a generated code,
// or ErrValidation / registration.ErrDuplicateEmail / a storage error
// INVARIANT: TotalAmount always equals the server-computed quote, never the client's
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) (registration.Registration, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return registration.Registration{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if input.Tier == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration tier is required", ErrValidation)
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" && lastName == "" {
		firstName, lastName = registration.SplitFullName(input.FullName)
	}
	if firstName == "" && lastName == "" {
		return registration.Registration{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	district := strings.TrimSpace(input.District)
	if strings.EqualFold(district, "other") && strings.TrimSpace(input.OtherDistrict) != "" {
		district = strings.TrimSpace(input.OtherDistrict)
	}

	// Duplicate check is best-effort; the store's unique constraint is the
	// enforcement point under concurrent submissions.
	if _, err := deps.RegistrationStore.GetByEmail(ctx, email); err == nil {
		return registration.Registration{}, registration.ErrDuplicateEmail
	} else if !errors.Is(err, registration.ErrNotFound) {
		return registration.Registration{}, fmt.Errorf("duplicate check failed: %w", err)
	}

	addOns := registration.AddOnSelection{
		PoolsideParty:       input.PoolsideParty,
		CommunityService:    input.CommunityService,
		InstallationBanquet: input.InstallationBanquet,
	}
	quote, err := pricing.ComputeQuote(input.Tier, addOns.Identifiers())
	if err != nil {
		return registration.Registration{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reg := registration.Registration{
		Code:      registration.NewCode(now),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		ClubName:  strings.TrimSpace(input.ClubName),
		District:  district,
		Position: registration.CollapsePosition(
			input.PPOASPosition,
			input.DistrictCabinetPosition,
			input.ClubPosition,
			input.PositionInNGO,
			input.Position,
		),
		Gender:         strings.TrimSpace(input.Gender),
		Address:        strings.TrimSpace(input.Address),
		Tier:           input.Tier,
		AddOns:         addOns,
		TierFee:        quote.TierPrice,
		AddOnFee:       quote.AddOnTotal,
		TotalAmount:    quote.Total,
		Vegetarian:     input.Vegetarian,
		TermsAccepted:  input.TermsAccepted,
		PrivacyAgreed:  input.PrivacyAgreed,
		MarketingOptIn: input.MarketingOptIn,
		PaymentSlipURL: strings.TrimSpace(input.PaymentSlipURL),
		Status:         registration.StatusPending,
		CreatedAt:      now,
	}

	if err := reg.Validate(); err != nil {
		return registration.Registration{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Inline slip data takes precedence over a pre-uploaded URL.
	if input.PaymentSlipDataURI != "" {
		url, err := storeInlineSlip(ctx, deps.BlobStore, reg.Code, input)
		if err != nil {
			return registration.Registration{}, err
		}
		reg.PaymentSlipURL = url
	}

	stored, err := deps.RegistrationStore.Save(ctx, reg)
	if err != nil {
		return registration.Registration{}, err
	}

	slog.Info("registration_created",
		"code", stored.Code,
		"tier", stored.Tier,
		"total_amount", stored.TotalAmount,
		"has_slip", stored.PaymentSlipURL != "",
	)

	if deps.Confirmation != nil {
		// Never fail a stored registration over a confirmation email.
		if err := ExecuteSendConfirmation(ctx, stored, *deps.Confirmation); err != nil {
			slog.Error("confirmation_email_failed", "code", stored.Code, "error", err.Error())
		}
	}

	return stored, nil
}

// storeInlineSlip validates an inline payment slip and writes it to blob storage.
func storeInlineSlip(ctx context.Context, store BlobStore, code string, input SubmitRegistrationInput) (string, error) {
	if store == nil {
		return "", errors.New("payment slip upload is not configured")
	}

	fileName := input.PaymentSlipFileName
	if fileName == "" {
		fileName = "payment-slip"
	}
	parsed, err := slip.ParseDataURI(input.PaymentSlipDataURI, fileName, input.PaymentSlipFileType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	stored, err := store.Put(ctx, blob.Object{
		Bucket:      "payment-slips",
		Name:        fmt.Sprintf("%s-%s%s", uuid.NewString(), code, slip.Extension(parsed.ContentType)),
		ContentType: parsed.ContentType,
		Data:        parsed.Data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store payment slip: %w", err)
	}
	return stored.URL, nil
}
