package pricing

import "errors"

// Registration tier identifiers. Prices are fixed per event, in whole currency units.
const (
	TierEarlyBird = "early-bird"
	TierStandard  = "standard"
	TierLate      = "late"
)

// Optional add-on identifiers.
const (
	AddOnPoolsideParty       = "poolside-party"
	AddOnCommunityService    = "community-service"
	AddOnInstallationBanquet = "installation-banquet"
)

// Domain errors
var (
	ErrUnknownTier  = errors.New("unknown registration tier")
	ErrUnknownAddOn = errors.New("unknown add-on")
)

// tierPrices is the fixed price table for registration tiers.
var tierPrices = map[string]int{
	TierEarlyBird: 260,
	TierStandard:  390,
	TierLate:      430,
}

// addOnPrices is the fixed price table for optional add-ons.
var addOnPrices = map[string]int{
	AddOnPoolsideParty:       50,
	AddOnCommunityService:    30,
	AddOnInstallationBanquet: 120,
}

// Quote is a computed fee breakdown for a registration.
type Quote struct {
	TierPrice  int
	AddOnTotal int
	Total      int
}

// KnownTier reports whether tier is a valid tier identifier.
// INVARIANT: price tables are never mutated after init
func KnownTier(tier string) bool {
	_, ok := tierPrices[tier]
	return ok
}

// TierPrice returns the fixed price for a tier.
// PRE: none
// POST: Returns the price, or ErrUnknownTier for unrecognized tiers
func TierPrice(tier string) (int, error) {
	price, ok := tierPrices[tier]
	if !ok {
		return 0, ErrUnknownTier
	}
	return price, nil
}

// AddOnPrice returns the fixed price for an add-on.
// PRE: none
// POST: Returns the price, or ErrUnknownAddOn for unrecognized add-ons
func AddOnPrice(addOn string) (int, error) {
	price, ok := addOnPrices[addOn]
	if !ok {
		return 0, ErrUnknownAddOn
	}
	return price, nil
}

// ComputeQuote calculates the fee breakdown for a tier and a set of selected add-ons.
// Pure and idempotent; no side effects.
// PRE: addOns contains only known add-on identifiers
// POST: Total == TierPrice + AddOnTotal
func ComputeQuote(tier string, addOns []string) (Quote, error) {
	tierPrice, err := TierPrice(tier)
	if err != nil {
		return Quote{}, err
	}

	addOnTotal := 0
	for _, a := range addOns {
		price, err := AddOnPrice(a)
		if err != nil {
			return Quote{}, err
		}
		addOnTotal += price
	}

	return Quote{
		TierPrice:  tierPrice,
		AddOnTotal: addOnTotal,
		Total:      tierPrice + addOnTotal,
	}, nil
}
