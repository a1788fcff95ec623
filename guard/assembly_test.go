package guard

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/judge"
	"github.com/exvulsec/safeguard/oracle"
)

func composeAssembly() Assembly {
	return Assembly{
		Blacklist:    NewBlacklistGuard(nil),
		ChainID:      1,
		SelfAddress:  common.HexToAddress("0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc"),
		Oracle:       &oracle.Client{},
		Classifier:   &stubClassifier{judgment: &judge.Judgment{OK: true}},
		NativeSymbol: "ETH",
	}
}

func TestAssemblyDefaultOrder(t *testing.T) {
	guards, err := composeAssembly().Build(nil)
	require.NoError(t, err)
	require.Len(t, guards, len(DefaultOrder))
	for i, g := range guards {
		assert.Equal(t, DefaultOrder[i], g.Name())
	}
}

func TestAssemblyCustomOrder(t *testing.T) {
	guards, err := composeAssembly().Build([]string{ReputationGuardName, BlacklistGuardName})
	require.NoError(t, err)
	require.Len(t, guards, 2)
	assert.Equal(t, ReputationGuardName, guards[0].Name())
	assert.Equal(t, BlacklistGuardName, guards[1].Name())
}

func TestAssemblyUnknownGuard(t *testing.T) {
	_, err := composeAssembly().Build([]string{"sentiment"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown guard name")
}

func TestAssemblyMissingDependencies(t *testing.T) {
	a := composeAssembly()
	a.Classifier = nil
	_, err := a.Build([]string{RiskJudgeGuardName})
	assert.Error(t, err)

	a = composeAssembly()
	a.Oracle = nil
	_, err = a.Build([]string{ReputationGuardName})
	assert.Error(t, err)

	a = composeAssembly()
	a.Blacklist = nil
	_, err = a.Build([]string{BlacklistGuardName})
	assert.Error(t, err)
}
