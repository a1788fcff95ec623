package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/exvulsec/safeguard/model"
)

const HashConsistencyGuardName = "hash-consistency"

// HashConsistencyGuard recomputes the safe transaction hash from the
// independently reconstructed transaction and compares it against the hash
// the service reported. A mismatch means a corrupted or malicious
// intermediary between us and the wallet backend.
type HashConsistencyGuard struct {
	chainID int64
}

func NewHashConsistencyGuard(chainID int64) *HashConsistencyGuard {
	return &HashConsistencyGuard{chainID: chainID}
}

func (hg *HashConsistencyGuard) Name() string {
	return HashConsistencyGuardName
}

func (hg *HashConsistencyGuard) Description() string {
	return "recomputes the safe transaction hash and compares it to the service-reported one"
}

func (hg *HashConsistencyGuard) Evaluate(_ context.Context, gctx *Context) (*model.VerificationOutcome, error) {
	computed := gctx.Reconstructed.Hash(hg.chainID, common.HexToAddress(gctx.Pending.SafeAddress))
	reported := gctx.Pending.SafeTxHash
	if !strings.EqualFold(computed.Hex(), reported) {
		reason := fmt.Sprintf("computed hash %s does not match reported hash %s", computed.Hex(), reported)
		return outcome(hg, false, reason), nil
	}
	return outcome(hg, true, ""), nil
}
