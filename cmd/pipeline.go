package cmd

import (
	"github.com/spf13/cobra"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/guard"
	"github.com/exvulsec/safeguard/judge"
	"github.com/exvulsec/safeguard/log"
	"github.com/exvulsec/safeguard/oracle"
	"github.com/exvulsec/safeguard/safe"
)

func setup(cmd *cobra.Command) {
	configFile, _ := cmd.Flags().GetString("config")
	config.SetupConfig(configFile)
	log.InitLog(config.Conf.LogPath)
}

func composePipeline(safeClient *safe.Client, signer *safe.Signer) (*guard.Pipeline, error) {
	blacklist, err := guard.NewBlacklistGuardFromFile(config.Conf.Guards.BlacklistPath)
	if err != nil {
		return nil, err
	}

	assembly := guard.Assembly{
		Blacklist:    blacklist,
		ChainID:      config.Conf.Chain.ID,
		SelfAddress:  signer.Address(),
		Oracle:       oracle.NewClient(nil),
		Classifier:   judge.NewClassifier(),
		NativeSymbol: nativeSymbol(config.Conf.Chain.Name),
	}
	guards, err := assembly.Build(config.Conf.Guards.Order)
	if err != nil {
		return nil, err
	}
	return guard.NewPipeline(config.Conf.Chain.Name, guard.NewContextFetcher(safeClient), guards...)
}

func nativeSymbol(chain string) string {
	switch chain {
	case "polygon":
		return "MATIC"
	case "bsc":
		return "BNB"
	case "avalanche":
		return "AVAX"
	default:
		return "ETH"
	}
}
