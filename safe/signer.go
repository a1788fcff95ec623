package safe

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/exvulsec/safeguard/client"
	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/model"
)

const execTransactionABI = `[{"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},{"name":"operation","type":"uint8"},{"name":"safeTxGas","type":"uint256"},{"name":"baseGas","type":"uint256"},{"name":"gasPrice","type":"uint256"},{"name":"gasToken","type":"address"},{"name":"refundReceiver","type":"address"},{"name":"signatures","type":"bytes"}],"name":"execTransaction","outputs":[{"name":"success","type":"bool"}],"stateMutability":"payable","type":"function"}]`

const (
	ActionExecuted  = "executed"
	ActionConfirmed = "confirmed"
	ActionSkipped   = "skipped"
)

// Signer holds the guard's operating identity and performs every write the
// dispatcher can trigger: confirm, execute, reject by replacement, and
// off-chain messages.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID int64
	client  *Client
}

func NewSigner(safeClient *Client) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(config.Conf.Signer.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signer private key is err %v", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: config.Conf.Chain.ID,
		client:  safeClient,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// SignHash produces a 65-byte eth signature of the given 32-byte digest with
// v normalized to 27/28, the form the safe contracts and service expect.
func (s *Signer) SignHash(hash common.Hash) (string, error) {
	sig, err := crypto.Sign(hash.Bytes(), s.key)
	if err != nil {
		return "", fmt.Errorf("sign hash %s is err %v", hash.Hex(), err)
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// SignOrExecute signs the transaction and either executes it on chain, when
// the distinct confirming owners plus ours meet the threshold, or submits the
// partial signature to the service queue. Returns the action taken. A prior
// confirmation by our own address counts once: the queued transaction may
// still carry our signature from an earlier run, re-confirming would be
// rejected by the service and double-counting would trip the threshold early.
func (s *Signer) SignOrExecute(ctx context.Context, tx *model.PendingTransaction) (string, error) {
	st, err := Reconstruct(tx)
	if err != nil {
		return "", err
	}
	safeAddress := common.HexToAddress(tx.SafeAddress)
	hash := st.Hash(s.chainID, safeAddress)

	signature, err := s.SignHash(hash)
	if err != nil {
		return "", err
	}

	confirmed := s.hasConfirmed(tx.Confirmations)
	owners := int64(distinctOwners(tx.Confirmations))
	if !confirmed {
		owners++
	}

	if owners >= tx.ConfirmationsRequired {
		if err = s.execute(ctx, safeAddress, st, tx.Confirmations, signature); err != nil {
			return "", err
		}
		return ActionExecuted, nil
	}

	if confirmed {
		return ActionSkipped, nil
	}
	if err = s.client.Confirm(ctx, tx.SafeTxHash, signature); err != nil {
		return "", err
	}
	return ActionConfirmed, nil
}

func (s *Signer) hasConfirmed(confirmations []model.Confirmation) bool {
	for _, confirmation := range confirmations {
		if strings.EqualFold(confirmation.Owner, s.address.Hex()) {
			return true
		}
	}
	return false
}

func distinctOwners(confirmations []model.Confirmation) int {
	owners := map[string]bool{}
	for _, confirmation := range confirmations {
		owners[strings.ToLower(confirmation.Owner)] = true
	}
	return len(owners)
}

// Reject proposes the nonce-burn replacement for a flagged transaction: zero
// value, empty data, same nonce, routed through the same sign-or-queue logic.
func (s *Signer) Reject(ctx context.Context, tx *model.PendingTransaction) error {
	safeAddress := common.HexToAddress(tx.SafeAddress)
	replacement := ReplacementTx(safeAddress, tx.Nonce)
	hash := replacement.Hash(s.chainID, safeAddress)

	signature, err := s.SignHash(hash)
	if err != nil {
		return err
	}
	return s.client.ProposeTransaction(ctx, tx.SafeAddress, replacement, hash.Hex(), s.address.Hex(), signature)
}

// PostMessage signs report as a safe off-chain message attributed to the
// signer and publishes it to the service.
func (s *Signer) PostMessage(ctx context.Context, safeAddress, report string) error {
	hash := MessageHash(s.chainID, common.HexToAddress(safeAddress), report)
	signature, err := s.SignHash(hash)
	if err != nil {
		return err
	}
	return s.client.ProposeMessage(ctx, safeAddress, report, signature)
}

func (s *Signer) execute(ctx context.Context, safeAddress common.Address, st *SafeTx, confirmations []model.Confirmation, ownSignature string) error {
	parsed, err := abi.JSON(strings.NewReader(execTransactionABI))
	if err != nil {
		return fmt.Errorf("parse execTransaction abi is err %v", err)
	}

	signatures, err := assembleSignatures(confirmations, s.address, ownSignature)
	if err != nil {
		return err
	}

	data := st.Data
	if data == nil {
		data = []byte{}
	}
	input, err := parsed.Pack("execTransaction",
		st.To, st.Value, data, st.Operation,
		st.SafeTxGas, st.BaseGas, st.GasPrice,
		st.GasToken, st.RefundReceiver, signatures,
	)
	if err != nil {
		return fmt.Errorf("pack execTransaction is err %v", err)
	}

	evmClient := client.EvmClient()
	nonce, err := evmClient.PendingNonceAt(ctx, s.address)
	if err != nil {
		return fmt.Errorf("get pending nonce for %s is err %v", s.address.Hex(), err)
	}
	gasPrice, err := evmClient.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("suggest gas price is err %v", err)
	}
	gasLimit, err := evmClient.EstimateGas(ctx, ethereum.CallMsg{
		From: s.address,
		To:   &safeAddress,
		Data: input,
	})
	if err != nil {
		return fmt.Errorf("estimate gas for execTransaction is err %v", err)
	}

	unsigned := types.NewTransaction(nonce, safeAddress, big.NewInt(0), gasLimit, gasPrice, input)
	signed, err := types.SignTx(unsigned, types.LatestSignerForChainID(big.NewInt(s.chainID)), s.key)
	if err != nil {
		return fmt.Errorf("sign execTransaction is err %v", err)
	}
	if err = evmClient.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("broadcast execTransaction is err %v", err)
	}
	return nil
}

// assembleSignatures concatenates the collected signatures plus our own,
// sorted by signer address ascending as the safe contract requires. The
// contract rejects duplicate owners, so when our prior confirmation is
// already in the list our fresh signature is not appended again.
func assembleSignatures(confirmations []model.Confirmation, ownAddress common.Address, ownSignature string) ([]byte, error) {
	type ownerSig struct {
		owner common.Address
		sig   []byte
	}
	sigs := make([]ownerSig, 0, len(confirmations)+1)
	ownIncluded := false
	for _, confirmation := range confirmations {
		raw, err := hexutil.Decode(confirmation.Signature)
		if err != nil {
			return nil, fmt.Errorf("decode signature of owner %s is err %v", confirmation.Owner, err)
		}
		if strings.EqualFold(confirmation.Owner, ownAddress.Hex()) {
			ownIncluded = true
		}
		sigs = append(sigs, ownerSig{owner: common.HexToAddress(confirmation.Owner), sig: raw})
	}
	if !ownIncluded {
		sigs = append(sigs, ownerSig{owner: ownAddress, sig: common.FromHex(ownSignature)})
	}

	sort.Slice(sigs, func(i, j int) bool {
		return strings.ToLower(sigs[i].owner.Hex()) < strings.ToLower(sigs[j].owner.Hex())
	})

	assembled := []byte{}
	for _, item := range sigs {
		assembled = append(assembled, item.sig...)
	}
	return assembled, nil
}
