package guard

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/oracle"
)

const ReputationGuardName = "reputation"

// ReputationGuard runs the oracle's three sub-checks against the
// destination: general address reputation, fungible-token security and
// NFT-contract security. Each sub-check maps tri-state flags to
// human-readable reasons, unknown flags are no signal. If every sub-check
// comes back without data, the guard has no opinion.
type ReputationGuard struct {
	oracle *oracle.Client
}

func NewReputationGuard(oracleClient *oracle.Client) *ReputationGuard {
	return &ReputationGuard{oracle: oracleClient}
}

func (rg *ReputationGuard) Name() string {
	return ReputationGuardName
}

func (rg *ReputationGuard) Description() string {
	return "checks the destination's address, token and NFT reputation with the oracle"
}

func (rg *ReputationGuard) Evaluate(ctx context.Context, gctx *Context) (*model.VerificationOutcome, error) {
	destination := gctx.Pending.To
	reasons := []string{}
	sawData := false

	addressSecurity, err := rg.oracle.AddressSecurity(ctx, destination)
	if err != nil {
		return nil, err
	}
	if addressSecurity != nil {
		sawData = true
		reasons = append(reasons, addressSecurity.MaliciousReasons()...)
	}

	tokenSecurity, err := rg.oracle.TokenSecurity(ctx, destination)
	if err != nil {
		return nil, err
	}
	if tokenSecurity != nil {
		sawData = true
		reasons = append(reasons, tokenSecurity.MaliciousReasons()...)
	}

	nftSecurity, err := rg.oracle.NFTSecurity(ctx, destination)
	if err != nil {
		return nil, err
	}
	if nftSecurity != nil {
		sawData = true
		reasons = append(reasons, nftSecurity.MaliciousReasons()...)
	}

	if !sawData {
		logrus.Infof("oracle has no reputation data for %s", destination)
		return nil, nil
	}
	if len(reasons) > 0 {
		return outcome(rg, false, strings.Join(reasons, "; ")), nil
	}
	return outcome(rg, true, ""), nil
}
