package client

import (
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/config"
)

type Instance struct {
	initializer func() any
	instance    any
	once        sync.Once
}

func (i *Instance) Instance() any {
	i.once.Do(func() {
		i.instance = i.initializer()
	})
	return i.instance
}

var httpClient *Instance

func initHTTPClient() any {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.Conf.HTTPServer.ClientMaxConns > 0 {
		transport.MaxConnsPerHost = config.Conf.HTTPServer.ClientMaxConns
	}
	logrus.Infof("init http client")
	return &http.Client{
		Transport: transport,
	}
}

func HTTPClient() *http.Client {
	return httpClient.Instance().(*http.Client)
}

func init() {
	httpClient = &Instance{initializer: initHTTPClient}
}
