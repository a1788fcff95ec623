package guard

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/model"
)

func TestBlacklistGuardRecipient(t *testing.T) {
	bg := NewBlacklistGuard([]string{"0x000000000000000000000000000000000000dEaD"})

	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x000000000000000000000000000000000000dead",
		SafeTxHash:  "0xaaaa",
	}
	result, err := bg.Evaluate(context.Background(), &Context{
		Pending:          pending,
		RelatedAddresses: pending.RelatedAddresses(),
	})
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "blacklisted")
}

func TestBlacklistGuardDecodedArgument(t *testing.T) {
	bg := NewBlacklistGuard([]string{"0x000000000000000000000000000000000000dEaD"})

	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		SafeTxHash:  "0xaaaa",
		DataDecoded: &model.DataDecoded{
			Method: "transfer",
			Parameters: []model.DecodedParameter{
				{Name: "to", Type: "address", Value: "0x000000000000000000000000000000000000dEaD"},
				{Name: "amount", Type: "uint256", Value: "1000000"},
			},
		},
	}
	result, err := bg.Evaluate(context.Background(), &Context{
		Pending:          pending,
		RelatedAddresses: pending.RelatedAddresses(),
	})
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "0x000000000000000000000000000000000000dead")
}

func TestBlacklistGuardCleanTransaction(t *testing.T) {
	bg := NewBlacklistGuard([]string{"0x000000000000000000000000000000000000dEaD"})

	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		SafeTxHash:  "0xaaaa",
	}
	result, err := bg.Evaluate(context.Background(), &Context{
		Pending:          pending,
		RelatedAddresses: pending.RelatedAddresses(),
	})
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestBlacklistGuardFromFile(t *testing.T) {
	path := t.TempDir() + "/blacklist.txt"
	content := "# known drainer\n0x000000000000000000000000000000000000dEaD\n\nnot-an-address\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	bg, err := NewBlacklistGuardFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, bg.addresses.Cardinality())
	assert.True(t, bg.addresses.Contains("0x000000000000000000000000000000000000dead"))
}

func TestBlacklistGuardFromMissingFile(t *testing.T) {
	_, err := NewBlacklistGuardFromFile("/nonexistent/blacklist.txt")
	assert.Error(t, err)
}
