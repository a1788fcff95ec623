package client

import (
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/config"
)

var evmClient *Instance

func initEvmClient() any {
	c, err := ethclient.Dial(config.Conf.Chain.ProviderURL)
	if err != nil {
		logrus.Fatalf("failed to connect provider url %s, err is %v", config.Conf.Chain.ProviderURL, err)
	}
	logrus.Infof("connect to chain %s provider successfully", config.Conf.Chain.Name)
	return c
}

func EvmClient() *ethclient.Client {
	return evmClient.Instance().(*ethclient.Client)
}

func init() {
	evmClient = &Instance{initializer: initEvmClient}
}
