// Package policy defines per-course purchase policies and payment offer
// validation. Policies are maintained by the catalog-management
// collaborator and are read-only during settlement.
package policy

import "fmt"

// AssetID identifies the asset a payment is denominated in.
type AssetID [32]byte

// BaseAsset is the network's native asset (the all-zero asset id).
var BaseAsset = AssetID{}

// Offer is the payment a buyer attaches to a purchase call.
// Ephemeral: consumed during validation, never stored.
type Offer struct {
	Asset  AssetID
	Amount uint64
}

// Policy is the per-course purchase policy: what must be paid, and to whom.
// Payee is either a payment address or a resolvable "alias@domain" handle.
type Policy struct {
	RequiredAsset  AssetID
	RequiredAmount uint64
	Payee          string
}

// OverpaymentMode fixes how offers above the required amount are handled.
type OverpaymentMode uint8

const (
	// ForwardFull accepts overpayment and forwards the full offered amount
	// to the payee. This is the default: refunds are out of scope, and
	// rejecting would force buyers to retry with exact change.
	ForwardFull OverpaymentMode = iota

	// RejectOverpayment fails offers that exceed the required amount.
	RejectOverpayment
)

// Validate checks an offer against a policy. The asset is checked before
// the amount so a wrong-asset offer is rejected regardless of how much of
// it is offered.
func Validate(offer *Offer, pol *Policy, mode OverpaymentMode) error {
	if offer == nil {
		return fmt.Errorf("%w: offer", ErrNilParam)
	}
	if pol == nil {
		return fmt.Errorf("%w: policy", ErrNilParam)
	}

	if offer.Asset != pol.RequiredAsset {
		return ErrWrongAsset
	}
	if offer.Amount < pol.RequiredAmount {
		return fmt.Errorf("%w: offered %d, need %d",
			ErrInsufficientAmount, offer.Amount, pol.RequiredAmount)
	}
	if mode == RejectOverpayment && offer.Amount > pol.RequiredAmount {
		return fmt.Errorf("%w: offered %d, need exactly %d",
			ErrOverpayment, offer.Amount, pol.RequiredAmount)
	}

	return nil
}

// validatePolicy checks a policy before it enters a registry.
func validatePolicy(pol *Policy) error {
	if pol == nil {
		return fmt.Errorf("%w: policy", ErrNilParam)
	}
	if pol.RequiredAmount == 0 {
		return fmt.Errorf("%w: zero required amount", ErrInvalidPolicy)
	}
	if pol.Payee == "" {
		return fmt.Errorf("%w: empty payee", ErrInvalidPolicy)
	}
	return nil
}
