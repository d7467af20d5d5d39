// Package settle implements the proof-gated payment settlement engine.
//
// A purchase is one deterministic state transition: verify the course's
// catalog inclusion proof, validate the payment offer against the
// course's policy, reserve the (course, buyer) pair in the ledger, move
// funds through the payment channel, and commit the purchase record.
// Any failure along the way aborts with zero effect on ledger or funds:
// the reservation is released and nothing has been written.
//
// The ledger commit is the last irrevocable action and happens only
// after the transfer has been confirmed by the channel.
package settle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursemarket/libcoursemarket-go/catalog"
	"github.com/coursemarket/libcoursemarket-go/channel"
	"github.com/coursemarket/libcoursemarket-go/ledger"
	"github.com/coursemarket/libcoursemarket-go/policy"
)

// DefaultTransferTimeout bounds the only potentially blocking settlement
// step, the external funds transfer.
const DefaultTransferTimeout = 30 * time.Second

// AnyDepth disables fixed-depth proof checking.
const AnyDepth = -1

// Engine sequences verification, payment validation, ledger update, and
// fund transfer as one atomic unit.
type Engine struct {
	roots    catalog.RootStore
	policies policy.Registry
	ledger   ledger.Ledger
	channel  channel.Channel

	depth   int // fixed catalog depth, or AnyDepth
	overpay policy.OverpaymentMode
	timeout time.Duration
	sink    EventSink
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalogDepth fixes the catalog depth; proofs of any other length
// are rejected before verification is attempted.
func WithCatalogDepth(depth int) Option {
	return func(e *Engine) { e.depth = depth }
}

// WithOverpaymentMode sets how offers above the required amount are handled.
func WithOverpaymentMode(mode policy.OverpaymentMode) Option {
	return func(e *Engine) { e.overpay = mode }
}

// WithTransferTimeout bounds the funds transfer step.
func WithTransferTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithEventSink installs a sink for settlement events.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithClock overrides the engine's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a settlement engine over the given collaborators.
func NewEngine(roots catalog.RootStore, policies policy.Registry, lg ledger.Ledger, ch channel.Channel, opts ...Option) (*Engine, error) {
	if roots == nil {
		return nil, fmt.Errorf("%w: root store", ErrNilParam)
	}
	if policies == nil {
		return nil, fmt.Errorf("%w: policy registry", ErrNilParam)
	}
	if lg == nil {
		return nil, fmt.Errorf("%w: ledger", ErrNilParam)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: payment channel", ErrNilParam)
	}

	e := &Engine{
		roots:    roots,
		policies: policies,
		ledger:   lg,
		channel:  ch,
		depth:    AnyDepth,
		overpay:  policy.ForwardFull,
		timeout:  DefaultTransferTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// PurchaseCourse settles one course purchase.
//
// Sequence: snapshot the active catalog root, verify the inclusion proof,
// resolve and validate the payment policy, reserve the (course, buyer)
// pair, transfer funds, commit the purchase record, emit an event. Each
// step fully completes before the next begins; any failure aborts with
// the reservation released and no record written.
func (e *Engine) PurchaseCourse(ctx context.Context, courseID [32]byte, proof *catalog.Proof, offer policy.Offer, buyerID [32]byte) (*Receipt, error) {
	if proof == nil {
		return nil, fmt.Errorf("%w: proof", ErrNilParam)
	}

	// One consistent (root, version) snapshot for the whole attempt;
	// a concurrent rotation does not change the root mid-verification.
	root, version, err := e.roots.Current()
	if err != nil {
		return nil, fmt.Errorf("settle: catalog root: %w", err)
	}

	var ok bool
	if e.depth == AnyDepth {
		ok, err = catalog.VerifyInclusion(courseID[:], proof, root)
	} else {
		ok, err = catalog.VerifyInclusionDepth(courseID[:], proof, root, e.depth)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}
	if !ok {
		return nil, ErrInvalidProof
	}

	pol, err := e.policies.Required(courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownCourse, err)
	}

	if err := policy.Validate(&offer, pol, e.overpay); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentRejected, err)
	}

	// The reservation is the single point of mutual exclusion: exactly
	// one concurrent attempt per pair gets past this line.
	if err := e.ledger.Reserve(courseID, buyerID); err != nil {
		if errors.Is(err, ledger.ErrAlreadyPurchased) || errors.Is(err, ledger.ErrAlreadyReserved) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyPurchased, err)
		}
		return nil, fmt.Errorf("settle: reserve purchase: %w", err)
	}

	// Funds move only now, with proof, policy, and reservation all held.
	// The full offered amount is forwarded (ForwardFull documents this).
	tctx, cancel := context.WithTimeout(ctx, e.timeout)
	transferID, err := e.channel.Transfer(tctx, offer.Asset, offer.Amount, pol.Payee)
	cancel()
	if err != nil {
		if relErr := e.ledger.Release(courseID, buyerID); relErr != nil {
			return nil, fmt.Errorf("%w: %w (release failed: %w)", ErrTransferFailed, err, relErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	rec := &ledger.PurchaseRecord{
		CourseID:    courseID,
		BuyerID:     buyerID,
		Amount:      offer.Amount,
		Asset:       [32]byte(offer.Asset),
		RootVersion: version,
		Timestamp:   e.now().Unix(),
		TransferID:  transferID,
	}
	if err := e.ledger.Commit(rec); err != nil {
		// Funds have moved but the record write failed. The reservation
		// still blocks a duplicate purchase in this process; surface the
		// fault so the operator can reconcile against transferID.
		return nil, fmt.Errorf("settle: commit after transfer %s: %w", transferID, err)
	}

	receipt := &Receipt{
		CourseID:    courseID,
		BuyerID:     buyerID,
		Amount:      rec.Amount,
		Asset:       offer.Asset,
		Payee:       pol.Payee,
		TransferID:  transferID,
		RootVersion: version,
		Timestamp:   rec.Timestamp,
	}

	if e.sink != nil {
		e.sink(&Event{
			CourseID:   courseID,
			BuyerID:    buyerID,
			Amount:     rec.Amount,
			Asset:      offer.Asset,
			TransferID: transferID,
			Timestamp:  rec.Timestamp,
		})
	}

	return receipt, nil
}

// HasPurchased reports whether the buyer owns the course.
func (e *Engine) HasPurchased(courseID, buyerID [32]byte) (bool, error) {
	return e.ledger.HasPurchased(courseID, buyerID)
}

// GetPurchase retrieves the purchase record for the pair, for reporting
// collaborators.
func (e *Engine) GetPurchase(courseID, buyerID [32]byte) (*ledger.PurchaseRecord, error) {
	return e.ledger.Get(courseID, buyerID)
}
