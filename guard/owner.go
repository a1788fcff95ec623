package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/exvulsec/safeguard/model"
)

const OwnerGuardName = "owner"

// OwnerGuard fails a transaction that removes the guard's own operating
// address from the safe's owner set. Any other owner-management call, or any
// other call at all, passes.
type OwnerGuard struct {
	self common.Address
}

var removeOwnerMethods = map[string]bool{
	"removeOwner":              true,
	"removeOwnerWithThreshold": true,
}

func NewOwnerGuard(self common.Address) *OwnerGuard {
	return &OwnerGuard{self: self}
}

func (og *OwnerGuard) Name() string {
	return OwnerGuardName
}

func (og *OwnerGuard) Description() string {
	return "rejects owner-removal calls that target the guard's own signer address"
}

func (og *OwnerGuard) Evaluate(_ context.Context, gctx *Context) (*model.VerificationOutcome, error) {
	decoded := gctx.Pending.DataDecoded
	if decoded == nil || !removeOwnerMethods[decoded.Method] {
		return outcome(og, true, ""), nil
	}

	value, ok := decoded.Parameter("owner")
	if !ok {
		return outcome(og, true, ""), nil
	}
	target, ok := value.(string)
	if !ok || !common.IsHexAddress(target) {
		return outcome(og, true, ""), nil
	}

	if strings.EqualFold(target, og.self.Hex()) {
		reason := fmt.Sprintf("call %s removes the guard signer %s from the owner set", decoded.Method, og.self.Hex())
		return outcome(og, false, reason), nil
	}
	return outcome(og, true, ""), nil
}
