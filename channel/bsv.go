package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/coursemarket/libcoursemarket-go/policy"
)

const (
	// DefaultFeeRate is the fee rate in satoshis per byte.
	DefaultFeeRate = uint64(1)

	// DustLimit is the minimum change output value; smaller change is
	// absorbed into the fee.
	DustLimit = uint64(546)
)

// UTXO is an unspent output the channel can spend to fund a transfer.
type UTXO struct {
	TxID         []byte         // 32 bytes, internal byte order
	Vout         uint32
	Amount       uint64         // satoshis
	ScriptPubKey []byte         // locking script bytes
	PrivateKey   *ec.PrivateKey // signing key
}

// Broadcaster submits a signed transaction to the network.
type Broadcaster interface {
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
}

// FundingSource provides spendable outputs for payouts.
type FundingSource interface {
	ListUnspent(ctx context.Context) ([]*UTXO, error)
}

// AddressResolver resolves "alias@domain" payee handles to addresses.
type AddressResolver interface {
	ResolveAddress(handle string) (string, error)
}

// BSVChannel pays course creators with on-chain P2PKH transactions.
// It only carries the base asset; any other asset id is rejected.
type BSVChannel struct {
	Funding    FundingSource
	Broadcast  Broadcaster
	Resolver   AddressResolver // required only for handle payees
	ChangeAddr string          // address receiving change
	FeeRate    uint64          // satoshis per byte (0 = DefaultFeeRate)
}

// Compile-time interface check.
var _ Channel = (*BSVChannel)(nil)

// Transfer builds, signs, and broadcasts a payment of amount satoshis to
// payee, returning the transaction id as the transfer identifier.
func (c *BSVChannel) Transfer(ctx context.Context, asset policy.AssetID, amount uint64, payee string) (string, error) {
	if c.Funding == nil {
		return "", fmt.Errorf("%w: funding source", ErrNilParam)
	}
	if c.Broadcast == nil {
		return "", fmt.Errorf("%w: broadcaster", ErrNilParam)
	}
	if asset != policy.BaseAsset {
		return "", fmt.Errorf("%w: BSV channel carries the base asset only", ErrUnsupportedAsset)
	}
	if amount == 0 {
		return "", fmt.Errorf("%w: zero amount", ErrInvalidPayee)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr, err := c.resolvePayee(payee)
	if err != nil {
		return "", err
	}

	utxos, err := c.Funding.ListUnspent(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list unspent: %w", ErrInsufficientFunds, err)
	}

	rawTxHex, err := c.buildPaymentTx(utxos, addr, amount)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	txid, err := c.Broadcast.BroadcastTx(ctx, rawTxHex)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastFailed, err)
	}

	return txid, nil
}

// resolvePayee turns a policy payee into a payment address. Handles
// containing "@" go through the resolver; anything else is parsed as an
// address directly.
func (c *BSVChannel) resolvePayee(payee string) (*script.Address, error) {
	addrStr := payee
	if strings.Contains(payee, "@") {
		if c.Resolver == nil {
			return nil, fmt.Errorf("%w: no resolver for handle %q", ErrInvalidPayee, payee)
		}
		resolved, err := c.Resolver.ResolveAddress(payee)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve %q: %w", ErrInvalidPayee, payee, err)
		}
		addrStr = resolved
	}

	addr, err := script.NewAddressFromString(addrStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPayee, addrStr, err)
	}
	return addr, nil
}

// buildPaymentTx selects UTXOs, builds and signs a P2PKH payment of
// amount satoshis to addr, and returns the signed transaction hex.
func (c *BSVChannel) buildPaymentTx(utxos []*UTXO, addr *script.Address, amount uint64) (string, error) {
	feeRate := c.FeeRate
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}

	// Greedy selection: take UTXOs until inputs cover amount plus the fee
	// estimate for the inputs taken so far.
	// Estimate: ~148 bytes per input + ~40 bytes per output + 10 overhead.
	var (
		selected   []*UTXO
		totalInput uint64
		estFee     uint64
	)
	for _, utxo := range utxos {
		if utxo == nil || utxo.PrivateKey == nil || len(utxo.ScriptPubKey) == 0 {
			continue
		}
		selected = append(selected, utxo)
		totalInput += utxo.Amount
		estFee = (10 + uint64(len(selected))*148 + 2*40) * feeRate
		if totalInput >= amount+estFee {
			break
		}
	}
	if totalInput < amount+estFee || len(selected) == 0 {
		return "", fmt.Errorf("%w: have %d satoshis, need %d (amount=%d + fee~%d)",
			ErrInsufficientFunds, totalInput, amount+estFee, amount, estFee)
	}

	tx := transaction.NewTransaction()

	for _, utxo := range selected {
		txidHash, err := chainhash.NewHash(utxo.TxID)
		if err != nil {
			return "", fmt.Errorf("%w: invalid UTXO txid: %w", ErrSigningFailed, err)
		}
		tx.AddInput(&transaction.TransactionInput{
			SourceTXID:       txidHash,
			SourceTxOutIndex: utxo.Vout,
			SequenceNumber:   0xffffffff,
		})
	}

	// Output 0: payment to the payee.
	payScript, err := p2pkh.Lock(addr)
	if err != nil {
		return "", fmt.Errorf("%w: payee lock script: %w", ErrSigningFailed, err)
	}
	tx.AddOutput(&transaction.TransactionOutput{
		LockingScript: payScript,
		Satoshis:      amount,
	})

	// Output 1: change (if above dust).
	changeAmount := totalInput - amount - estFee
	if changeAmount > DustLimit {
		if c.ChangeAddr == "" {
			return "", fmt.Errorf("%w: change address required for %d satoshis change",
				ErrInvalidPayee, changeAmount)
		}
		changeAddr, addrErr := script.NewAddressFromString(c.ChangeAddr)
		if addrErr != nil {
			return "", fmt.Errorf("%w: change address: %w", ErrInvalidPayee, addrErr)
		}
		changeScript, lockErr := p2pkh.Lock(changeAddr)
		if lockErr != nil {
			return "", fmt.Errorf("%w: change lock script: %w", ErrSigningFailed, lockErr)
		}
		tx.AddOutput(&transaction.TransactionOutput{
			LockingScript: changeScript,
			Satoshis:      changeAmount,
		})
	}

	// Set source outputs and sign each input.
	for i, utxo := range selected {
		lockScript := script.NewFromBytes(utxo.ScriptPubKey)
		tx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      utxo.Amount,
			LockingScript: lockScript,
		})

		unlocker, unlockErr := p2pkh.Unlock(utxo.PrivateKey, nil)
		if unlockErr != nil {
			return "", fmt.Errorf("%w: create unlocker for input %d: %w", ErrSigningFailed, i, unlockErr)
		}
		tx.Inputs[i].UnlockingScriptTemplate = unlocker
	}

	if err := tx.Sign(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	return tx.Hex(), nil
}
