// Package channel defines the payment channel collaborator boundary: the
// component that actually moves funds to a payee once settlement has
// approved a purchase.
package channel

import (
	"context"

	"github.com/coursemarket/libcoursemarket-go/policy"
)

// Channel moves funds to a payee. Called exactly once per successful
// settlement, after proof and payment validation and the ledger
// reservation have all succeeded.
type Channel interface {
	// Transfer sends amount of asset to payee and returns an opaque
	// transfer identifier. Implementations must honor ctx cancellation
	// and deadlines; the settlement engine bounds every call.
	Transfer(ctx context.Context, asset policy.AssetID, amount uint64, payee string) (string, error)
}

// MockChannel is a test double for Channel.
// TransferFn must be set before Transfer is called.
type MockChannel struct {
	TransferFn func(ctx context.Context, asset policy.AssetID, amount uint64, payee string) (string, error)
}

func (m *MockChannel) Transfer(ctx context.Context, asset policy.AssetID, amount uint64, payee string) (string, error) {
	return m.TransferFn(ctx, asset, amount, payee)
}
