package guard

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/safe"
)

func composeHashCheckContext(t *testing.T, chainID int64) *Context {
	t.Helper()
	data := "0xa9059cbb000000000000000000000000000000000000000000000000000000000000dead0000000000000000000000000000000000000000000000000000000000989680"
	pending := &model.PendingTransaction{
		SafeAddress:    "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:             "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		Value:          decimal.Zero,
		Data:           &data,
		Operation:      model.OperationCall,
		GasToken:       "0x0000000000000000000000000000000000000000",
		RefundReceiver: "0x0000000000000000000000000000000000000000",
		Nonce:          42,
	}
	reconstructed, err := safe.Reconstruct(pending)
	require.NoError(t, err)
	pending.SafeTxHash = reconstructed.Hash(chainID, common.HexToAddress(pending.SafeAddress)).Hex()
	return &Context{
		Pending:          pending,
		Reconstructed:    reconstructed,
		RelatedAddresses: pending.RelatedAddresses(),
	}
}

func TestHashConsistencyGuardMatch(t *testing.T) {
	hg := NewHashConsistencyGuard(1)
	result, err := hg.Evaluate(context.Background(), composeHashCheckContext(t, 1))
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestHashConsistencyGuardTamperedField(t *testing.T) {
	hg := NewHashConsistencyGuard(1)
	gctx := composeHashCheckContext(t, 1)
	// service reports one recipient, reconstruction sees another
	gctx.Reconstructed.To = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

	result, err := hg.Evaluate(context.Background(), gctx)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "does not match")
}

func TestHashConsistencyGuardWrongChain(t *testing.T) {
	// a hash computed for mainnet must not validate under another chain id
	hg := NewHashConsistencyGuard(10)
	result, err := hg.Evaluate(context.Background(), composeHashCheckContext(t, 1))
	require.NoError(t, err)
	assert.False(t, result.OK)
}
