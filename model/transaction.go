package model

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// HistoryWindow bounds how many historical transactions are handed to any
// model-facing guard, most recent first.
const HistoryWindow = 25

const (
	OperationCall         = 0
	OperationDelegateCall = 1
)

// PendingTransaction is a queued multisig transaction as reported by the
// Safe transaction service. It is immutable once fetched, guards only read it.
type PendingTransaction struct {
	SafeAddress           string          `json:"safe"`
	To                    string          `json:"to"`
	Value                 decimal.Decimal `json:"value"`
	Data                  *string         `json:"data"`
	Operation             int             `json:"operation"`
	GasToken              string          `json:"gasToken"`
	SafeTxGas             int64           `json:"safeTxGas"`
	BaseGas               int64           `json:"baseGas"`
	GasPrice              decimal.Decimal `json:"gasPrice"`
	RefundReceiver        string          `json:"refundReceiver"`
	Nonce                 int64           `json:"nonce"`
	SafeTxHash            string          `json:"safeTxHash"`
	Proposer              string          `json:"proposer"`
	IsExecuted            bool            `json:"isExecuted"`
	SubmissionDate        string          `json:"submissionDate"`
	ExecutionDate         *string         `json:"executionDate"`
	ConfirmationsRequired int64           `json:"confirmationsRequired"`
	Confirmations         []Confirmation  `json:"confirmations"`
	DataDecoded           *DataDecoded    `json:"dataDecoded"`
}

// HistoricalTransaction has the same shape as PendingTransaction but is
// already executed, guards use it as read-only context.
type HistoricalTransaction = PendingTransaction

type Confirmation struct {
	Owner          string `json:"owner"`
	Signature      string `json:"signature"`
	SubmissionDate string `json:"submissionDate"`
}

type DataDecoded struct {
	Method     string             `json:"method"`
	Parameters []DecodedParameter `json:"parameters"`
}

type DecodedParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func (dd *DataDecoded) Parameter(name string) (any, bool) {
	for _, param := range dd.Parameters {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// RelatedAddresses collects every address the call references: the recipient,
// the proposer, the confirming owners and any address-looking value inside the
// decoded call arguments.
func (pt *PendingTransaction) RelatedAddresses() mapset.Set[string] {
	addresses := mapset.NewSet[string]()
	appendAddress(addresses, pt.To)
	appendAddress(addresses, pt.Proposer)
	for _, confirmation := range pt.Confirmations {
		appendAddress(addresses, confirmation.Owner)
	}
	if pt.DataDecoded != nil {
		for _, param := range pt.DataDecoded.Parameters {
			collectAddresses(addresses, param.Value)
		}
	}
	return addresses
}

func (pt *PendingTransaction) DataBytes() []byte {
	if pt.Data == nil || *pt.Data == "" || *pt.Data == "0x" {
		return nil
	}
	return common.FromHex(*pt.Data)
}

func (pt *PendingTransaction) Method() string {
	if pt.DataDecoded == nil {
		return ""
	}
	return pt.DataDecoded.Method
}

func appendAddress(addresses mapset.Set[string], value string) {
	if common.IsHexAddress(value) {
		addresses.Add(strings.ToLower(value))
	}
}

func collectAddresses(addresses mapset.Set[string], value any) {
	switch v := value.(type) {
	case string:
		appendAddress(addresses, v)
	case []any:
		for _, item := range v {
			collectAddresses(addresses, item)
		}
	case map[string]any:
		for _, item := range v {
			collectAddresses(addresses, item)
		}
	}
}

type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

type Balance struct {
	TokenAddress *string         `json:"tokenAddress"`
	Token        *TokenInfo      `json:"token"`
	Balance      decimal.Decimal `json:"balance"`
	FiatBalance  decimal.Decimal `json:"fiatBalance"`
}

type Balances []Balance

// Describe renders the balances one line per token with amount and fiat value.
func (bs Balances) Describe(nativeSymbol string) string {
	lines := make([]string, 0, len(bs))
	for _, balance := range bs {
		symbol := nativeSymbol
		decimals := int32(18)
		if balance.Token != nil {
			symbol = balance.Token.Symbol
			decimals = balance.Token.Decimals
		}
		amount := balance.Balance.Shift(-decimals)
		lines = append(lines, fmt.Sprintf("%s: %s (%s USD)", symbol, amount.String(), balance.FiatBalance.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}
