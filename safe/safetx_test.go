package safe

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/model"
)

const (
	testSafeAddress = "0x1c0FFEe254729296a45a3885639AC7E10F9d5497"
	testRecipient   = "0x2f318C334780961FB129D2a6c30D0763d9a5C970"
)

func composeSafeTx() *SafeTx {
	return &SafeTx{
		To:        common.HexToAddress(testRecipient),
		Value:     big.NewInt(1000),
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
		Operation: OperationCall,
		SafeTxGas: big.NewInt(0),
		BaseGas:   big.NewInt(0),
		GasPrice:  big.NewInt(0),
		Nonce:     big.NewInt(42),
	}
}

func TestReconstruct(t *testing.T) {
	data := "0xa9059cbb"
	tx := &model.PendingTransaction{
		SafeAddress:    testSafeAddress,
		To:             testRecipient,
		Value:          decimal.NewFromInt(1000),
		Data:           &data,
		Operation:      model.OperationCall,
		GasToken:       "0x0000000000000000000000000000000000000000",
		RefundReceiver: "0x0000000000000000000000000000000000000000",
		Nonce:          42,
	}

	st, err := Reconstruct(tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testRecipient), st.To)
	assert.Equal(t, big.NewInt(1000), st.Value)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, st.Data)
	assert.Equal(t, big.NewInt(42), st.Nonce)

	tx.To = "not-an-address"
	_, err = Reconstruct(tx)
	assert.Error(t, err)
}

func TestHashIsDeterministic(t *testing.T) {
	safeAddress := common.HexToAddress(testSafeAddress)
	first := composeSafeTx().Hash(1, safeAddress)
	second := composeSafeTx().Hash(1, safeAddress)
	assert.Equal(t, first, second)
}

func TestHashIsSensitiveToEveryField(t *testing.T) {
	safeAddress := common.HexToAddress(testSafeAddress)
	base := composeSafeTx().Hash(1, safeAddress)

	mutations := map[string]func(*SafeTx){
		"to":        func(st *SafeTx) { st.To = common.HexToAddress("0x000000000000000000000000000000000000dEaD") },
		"value":     func(st *SafeTx) { st.Value = big.NewInt(1001) },
		"data":      func(st *SafeTx) { st.Data = nil },
		"operation": func(st *SafeTx) { st.Operation = 1 },
		"gas price": func(st *SafeTx) { st.GasPrice = big.NewInt(1) },
		"nonce":     func(st *SafeTx) { st.Nonce = big.NewInt(43) },
	}
	for name, mutate := range mutations {
		st := composeSafeTx()
		mutate(st)
		assert.NotEqual(t, base, st.Hash(1, safeAddress), "mutating %s must change the hash", name)
	}

	assert.NotEqual(t, base, composeSafeTx().Hash(10, safeAddress), "chain id is part of the domain")
	assert.NotEqual(t, base, composeSafeTx().Hash(1, common.HexToAddress(testRecipient)), "safe address is part of the domain")
}

func TestReplacementTx(t *testing.T) {
	safeAddress := common.HexToAddress(testSafeAddress)
	replacement := ReplacementTx(safeAddress, 42)

	assert.Equal(t, safeAddress, replacement.To, "replacement targets the safe itself")
	assert.Equal(t, int64(0), replacement.Value.Int64())
	assert.Empty(t, replacement.Data)
	assert.Equal(t, OperationCall, replacement.Operation)
	assert.Equal(t, int64(42), replacement.Nonce.Int64(), "replacement burns the flagged transaction's nonce")
	assert.Equal(t, common.Address{}, replacement.GasToken)
	assert.Equal(t, common.Address{}, replacement.RefundReceiver)
}

func TestDomainSeparator(t *testing.T) {
	safeAddress := common.HexToAddress(testSafeAddress)
	assert.Equal(t, DomainSeparator(1, safeAddress), DomainSeparator(1, safeAddress))
	assert.NotEqual(t, DomainSeparator(1, safeAddress), DomainSeparator(10, safeAddress))
	assert.NotEqual(t, DomainSeparator(1, safeAddress), DomainSeparator(1, common.HexToAddress(testRecipient)))
}

func TestMessageHash(t *testing.T) {
	safeAddress := common.HexToAddress(testSafeAddress)
	first := MessageHash(1, safeAddress, "transaction 0xaaaa was rejected")
	assert.Equal(t, first, MessageHash(1, safeAddress, "transaction 0xaaaa was rejected"))
	assert.NotEqual(t, first, MessageHash(1, safeAddress, "transaction 0xbbbb was rejected"))
	assert.NotEqual(t, first, MessageHash(10, safeAddress, "transaction 0xaaaa was rejected"))
}
