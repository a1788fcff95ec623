package model

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/shopspring/decimal"
)

func TestRelatedAddresses(t *testing.T) {
	data := "0x"
	tx := PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		Data:        &data,
		Proposer:    "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc",
		Confirmations: []Confirmation{
			{Owner: "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc"},
			{Owner: "0x976EA74026E726554dB657fA54763abd0C3a0aa9"},
		},
		DataDecoded: &DataDecoded{
			Method: "multiSend",
			Parameters: []DecodedParameter{
				{Name: "targets", Type: "address[]", Value: []any{
					"0x000000000000000000000000000000000000dEaD",
					map[string]any{"inner": "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"},
				}},
				{Name: "note", Type: "string", Value: "not an address"},
			},
		},
	}

	addresses := tx.RelatedAddresses()
	assert.Equal(t, addresses.Cardinality(), 5)
	assert.Equal(t, addresses.Contains("0x2f318c334780961fb129d2a6c30d0763d9a5c970"), true)
	assert.Equal(t, addresses.Contains("0x000000000000000000000000000000000000dead"), true)
	assert.Equal(t, addresses.Contains("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65"), true)
	assert.Equal(t, addresses.Contains("not an address"), false)
}

func TestDataBytes(t *testing.T) {
	empty := "0x"
	payload := "0xa9059cbb"

	tx := PendingTransaction{}
	assert.Equal(t, len(tx.DataBytes()), 0)

	tx.Data = &empty
	assert.Equal(t, len(tx.DataBytes()), 0)

	tx.Data = &payload
	assert.Equal(t, tx.DataBytes(), []byte{0xa9, 0x05, 0x9c, 0xbb})
}

func TestBalancesDescribe(t *testing.T) {
	balances := Balances{
		{Balance: decimal.New(5, 18), FiatBalance: decimal.NewFromInt(12500)},
		{
			Token:       &TokenInfo{Name: "USD Coin", Symbol: "USDC", Decimals: 6},
			Balance:     decimal.New(2500, 6),
			FiatBalance: decimal.NewFromInt(2500),
		},
	}

	described := balances.Describe("ETH")
	assert.Equal(t, described, "ETH: 5 (12500.00 USD)\nUSDC: 2500 (2500.00 USD)")
}
