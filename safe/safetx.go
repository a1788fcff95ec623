package safe

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/exvulsec/safeguard/model"
)

// EIP-712 typehashes of the Safe v1.3 contracts.
var (
	domainSeparatorTypehash = crypto.Keccak256([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))
	safeTxTypehash          = crypto.Keccak256([]byte("SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"))
	safeMessageTypehash     = crypto.Keccak256([]byte("SafeMessage(bytes message)"))
)

// SafeTx is the wallet-native representation of a multisig call,
// independently rebuilt from the service payload so its computed hash can be
// cross-checked against the hash the service reported.
type SafeTx struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      uint8
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// Reconstruct rebuilds the wallet-native transaction from the service payload.
func Reconstruct(tx *model.PendingTransaction) (*SafeTx, error) {
	if !common.IsHexAddress(tx.To) {
		return nil, fmt.Errorf("transaction %s recipient %s is not an address", tx.SafeTxHash, tx.To)
	}
	return &SafeTx{
		To:             common.HexToAddress(tx.To),
		Value:          tx.Value.BigInt(),
		Data:           tx.DataBytes(),
		Operation:      uint8(tx.Operation),
		SafeTxGas:      big.NewInt(tx.SafeTxGas),
		BaseGas:        big.NewInt(tx.BaseGas),
		GasPrice:       tx.GasPrice.BigInt(),
		GasToken:       common.HexToAddress(tx.GasToken),
		RefundReceiver: common.HexToAddress(tx.RefundReceiver),
		Nonce:          big.NewInt(tx.Nonce),
	}, nil
}

// ReplacementTx is the standard nonce-burn rejection: a zero-value, empty-data
// call to the safe itself at the flagged transaction's nonce.
func ReplacementTx(safeAddress common.Address, nonce int64) *SafeTx {
	return &SafeTx{
		To:        safeAddress,
		Value:     big.NewInt(0),
		Operation: OperationCall,
		SafeTxGas: big.NewInt(0),
		BaseGas:   big.NewInt(0),
		GasPrice:  big.NewInt(0),
		Nonce:     big.NewInt(nonce),
	}
}

const OperationCall = uint8(model.OperationCall)

func DomainSeparator(chainID int64, safeAddress common.Address) common.Hash {
	var buf bytes.Buffer
	buf.Write(domainSeparatorTypehash)
	buf.Write(encodeUint(big.NewInt(chainID)))
	buf.Write(encodeAddress(safeAddress))
	return common.BytesToHash(crypto.Keccak256(buf.Bytes()))
}

// Hash computes the canonical EIP-712 safe transaction hash.
func (st *SafeTx) Hash(chainID int64, safeAddress common.Address) common.Hash {
	var enc bytes.Buffer
	enc.Write(safeTxTypehash)
	enc.Write(encodeAddress(st.To))
	enc.Write(encodeUint(st.Value))
	enc.Write(crypto.Keccak256(st.Data))
	enc.Write(encodeUint(big.NewInt(int64(st.Operation))))
	enc.Write(encodeUint(st.SafeTxGas))
	enc.Write(encodeUint(st.BaseGas))
	enc.Write(encodeUint(st.GasPrice))
	enc.Write(encodeAddress(st.GasToken))
	enc.Write(encodeAddress(st.RefundReceiver))
	enc.Write(encodeUint(st.Nonce))

	return eip712Hash(chainID, safeAddress, crypto.Keccak256(enc.Bytes()))
}

// MessageHash computes the EIP-712 hash of an off-chain safe message. The raw
// message is hashed with the EIP-191 personal-sign scheme first, matching how
// wallet frontends present string messages for signing.
func MessageHash(chainID int64, safeAddress common.Address, message string) common.Hash {
	personal := accounts.TextHash([]byte(message))

	var enc bytes.Buffer
	enc.Write(safeMessageTypehash)
	enc.Write(crypto.Keccak256(personal))

	return eip712Hash(chainID, safeAddress, crypto.Keccak256(enc.Bytes()))
}

func eip712Hash(chainID int64, safeAddress common.Address, structHash []byte) common.Hash {
	separator := DomainSeparator(chainID, safeAddress)

	var buf bytes.Buffer
	buf.Write([]byte{0x19, 0x01})
	buf.Write(separator.Bytes())
	buf.Write(structHash)
	return common.BytesToHash(crypto.Keccak256(buf.Bytes()))
}

func encodeUint(value *big.Int) []byte {
	if value == nil {
		value = big.NewInt(0)
	}
	return common.LeftPadBytes(value.Bytes(), 32)
}

func encodeAddress(address common.Address) []byte {
	return common.LeftPadBytes(address.Bytes(), 32)
}
