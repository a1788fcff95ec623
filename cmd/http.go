package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/exvulsec/safeguard/safe"
	"github.com/exvulsec/safeguard/server"
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "serve the guard verification api",
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)

		safeClient := safe.NewClient()
		signer, err := safe.NewSigner(safeClient)
		if err != nil {
			logrus.Panicf("create signer is err %v", err)
		}
		pipeline, err := composePipeline(safeClient, signer)
		if err != nil {
			logrus.Panicf("compose pipeline is err %v", err)
		}

		srv := server.NewHTTPServer(pipeline)
		srv.Run()
	},
}

func httpCmdInit() {
	httpCmd.Flags().String("config", "", "set config file path")
}

func init() {
	httpCmdInit()
}
