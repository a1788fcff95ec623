package guard

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/exvulsec/safeguard/judge"
	"github.com/exvulsec/safeguard/oracle"
)

// DefaultOrder keeps the reference behavior: the model judge runs before the
// oracle because it is the cheaper of the two in practice. Operators may
// override it per deployment, the set of guards itself is closed.
var DefaultOrder = []string{
	BlacklistGuardName,
	HashConsistencyGuardName,
	OwnerGuardName,
	RiskJudgeGuardName,
	ReputationGuardName,
}

// Assembly holds the dependencies of the closed guard set and builds the
// ordered slice the pipeline runs.
type Assembly struct {
	Blacklist    *BlacklistGuard
	ChainID      int64
	SelfAddress  common.Address
	Oracle       *oracle.Client
	Classifier   judge.Classifier
	NativeSymbol string
}

func (a Assembly) Build(order []string) ([]Guard, error) {
	if len(order) == 0 {
		order = DefaultOrder
	}
	guards := make([]Guard, 0, len(order))
	for _, name := range order {
		switch name {
		case BlacklistGuardName:
			if a.Blacklist == nil {
				return nil, fmt.Errorf("guard %s is ordered but no blacklist is loaded", name)
			}
			guards = append(guards, a.Blacklist)
		case HashConsistencyGuardName:
			guards = append(guards, NewHashConsistencyGuard(a.ChainID))
		case OwnerGuardName:
			guards = append(guards, NewOwnerGuard(a.SelfAddress))
		case RiskJudgeGuardName:
			if a.Classifier == nil {
				return nil, fmt.Errorf("guard %s is ordered but no classifier is configured", name)
			}
			guards = append(guards, NewRiskJudgeGuard(a.Classifier, a.NativeSymbol))
		case ReputationGuardName:
			if a.Oracle == nil {
				return nil, fmt.Errorf("guard %s is ordered but no oracle is configured", name)
			}
			guards = append(guards, NewReputationGuard(a.Oracle))
		default:
			return nil, fmt.Errorf("unknown guard name %s", name)
		}
	}
	return guards, nil
}
