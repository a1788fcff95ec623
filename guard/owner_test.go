package guard

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/model"
)

const ownerGuardSelf = "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc"

func composeRemoveOwnerContext(method, target string) *Context {
	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		SafeTxHash:  "0xaaaa",
		DataDecoded: &model.DataDecoded{
			Method: method,
			Parameters: []model.DecodedParameter{
				{Name: "prevOwner", Type: "address", Value: "0x0000000000000000000000000000000000000001"},
				{Name: "owner", Type: "address", Value: target},
				{Name: "_threshold", Type: "uint256", Value: "1"},
			},
		},
	}
	return &Context{Pending: pending, RelatedAddresses: pending.RelatedAddresses()}
}

func TestOwnerGuardRejectsSelfRemoval(t *testing.T) {
	og := NewOwnerGuard(common.HexToAddress(ownerGuardSelf))

	for _, method := range []string{"removeOwner", "removeOwnerWithThreshold"} {
		result, err := og.Evaluate(context.Background(), composeRemoveOwnerContext(method, ownerGuardSelf))
		require.NoError(t, err)
		assert.False(t, result.OK, method)
		assert.Contains(t, result.Reason, method)
	}
}

func TestOwnerGuardAllowsOtherOwnerRemoval(t *testing.T) {
	og := NewOwnerGuard(common.HexToAddress(ownerGuardSelf))

	result, err := og.Evaluate(context.Background(), composeRemoveOwnerContext("removeOwner", "0x2f318C334780961FB129D2a6c30D0763d9a5C970"))
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestOwnerGuardIgnoresOtherMethods(t *testing.T) {
	og := NewOwnerGuard(common.HexToAddress(ownerGuardSelf))

	result, err := og.Evaluate(context.Background(), composeRemoveOwnerContext("addOwnerWithThreshold", ownerGuardSelf))
	require.NoError(t, err)
	assert.True(t, result.OK)

	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		SafeTxHash:  "0xbbbb",
	}
	result, err = og.Evaluate(context.Background(), &Context{Pending: pending, RelatedAddresses: pending.RelatedAddresses()})
	require.NoError(t, err)
	assert.True(t, result.OK, "plain transfers without decoded data must pass")
}

func TestOwnerGuardSelfRemovalIsCaseInsensitive(t *testing.T) {
	og := NewOwnerGuard(common.HexToAddress(ownerGuardSelf))

	result, err := og.Evaluate(context.Background(), composeRemoveOwnerContext("removeOwner", "0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc"))
	require.NoError(t, err)
	assert.False(t, result.OK)
}
